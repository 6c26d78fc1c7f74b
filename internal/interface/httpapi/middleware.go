package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"dispatch-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	csrfCookie = "XSRF-TOKEN"
	csrfHeader = "X-CSRFToken"
)

// CSRF issues the anti-forgery cookie and rejects mutating requests whose
// header does not echo it
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(csrfCookie)
		if err != nil || token == "" {
			token = uuid.NewString()
			c.SetSameSite(http.SameSiteStrictMode)
			c.SetCookie(csrfCookie, token, int((24 * time.Hour).Seconds()), "/", "", false, false)
			c.Request.AddCookie(&http.Cookie{Name: csrfCookie, Value: token})
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		header := c.GetHeader(csrfHeader)
		if header == "" || subtle.ConstantTimeCompare([]byte(header), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "CSRF token missing or invalid"})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each request once it has been served
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).String())
	}
}
