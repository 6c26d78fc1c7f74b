package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ScheduleHandler serves /api/schedules
type ScheduleHandler struct {
	schedules repository.ScheduleRepository
	validate  *validator.Validate
	logger    logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(schedules repository.ScheduleRepository, logger logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		validate:  validator.New(),
		logger:    logger,
	}
}

// List returns every schedule
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.schedules.FindAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list schedules", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list schedules"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "schedules": schedules})
}

// Create stores one schedule or an array of them
func (h *ScheduleHandler) Create(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	var schedules []*entity.Schedule
	if bytes.TrimSpace(body)[0] == '[' {
		err = json.Unmarshal(body, &schedules)
	} else {
		var one entity.Schedule
		err = json.Unmarshal(body, &one)
		schedules = []*entity.Schedule{&one}
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(schedules) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	for _, s := range schedules {
		if s == nil || s.TransactionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "transactionID is required"})
			return
		}
		if err := h.validate.Struct(s); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "transactionID": s.TransactionID})
			return
		}
	}

	ids, err := h.schedules.CreateMany(c.Request.Context(), schedules)
	if err != nil {
		h.logger.Error("Failed to create schedules", "count", len(schedules), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create schedules"})
		return
	}

	h.logger.Info("Schedules created", "count", len(ids))
	c.JSON(http.StatusOK, gin.H{"success": true, "transactionIDs": ids})
}

// Update applies the fields of the body to an existing schedule
func (h *ScheduleHandler) Update(c *gin.Context) {
	transactionID := c.Param("transactionID")

	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil || len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}
	if date, ok := fields["date"].(string); ok {
		if err := h.validate.Var(date, "datetime=2006-01-02"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	err := h.schedules.Update(c.Request.Context(), transactionID, fields)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to update schedule", "transactionID", transactionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactionID": transactionID})
}

// Delete removes a schedule
func (h *ScheduleHandler) Delete(c *gin.Context) {
	transactionID := c.Param("transactionID")

	err := h.schedules.Delete(c.Request.Context(), transactionID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete schedule", "transactionID", transactionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactionID": transactionID})
}
