package httpapi

import (
	"net/http"

	"dispatch-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the backend routes
func NewRouter(schedules *ScheduleHandler, admin *AdminHandler, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log), CSRF())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/schedules", schedules.List)
		api.POST("/schedules", schedules.Create)
		api.PUT("/schedules/:transactionID", schedules.Update)
		api.DELETE("/schedules/:transactionID", schedules.Delete)

		api.GET("/transportUnits", admin.TransportUnits)

		adminGroup := api.Group("/admin")
		adminGroup.GET("/users", admin.Users)
		adminGroup.GET("/transport-units", admin.TransportUnits)
		adminGroup.GET("/dashboard", admin.Dashboard)
	}

	return router
}
