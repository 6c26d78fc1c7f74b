package httpapi

import (
	"net/http"
	"time"

	"dispatch-console/internal/domain/repository"
	"dispatch-console/internal/usecase"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the roster, fleet and dashboard reads
type AdminHandler struct {
	users     repository.UserRepository
	units     repository.TransportUnitRepository
	schedules repository.ScheduleRepository
	location  *time.Location
	logger    logger.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	users repository.UserRepository,
	units repository.TransportUnitRepository,
	schedules repository.ScheduleRepository,
	location *time.Location,
	logger logger.Logger,
) *AdminHandler {
	if location == nil {
		location = time.UTC
	}
	return &AdminHandler{
		users:     users,
		units:     units,
		schedules: schedules,
		location:  location,
		logger:    logger,
	}
}

// Users lists the roster, optionally narrowed with ?role=
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.users.FindAll(c.Request.Context(), c.Query("role"))
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// TransportUnits lists the fleet
func (h *AdminHandler) TransportUnits(c *gin.Context) {
	units, err := h.units.FindAll(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list transport units", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list transport units"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// Dashboard returns today's headline counts
func (h *AdminHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	schedules, err := h.schedules.FindAll(ctx)
	if err != nil {
		h.logger.Error("Failed to load schedules for dashboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	users, err := h.users.FindAll(ctx, "")
	if err != nil {
		h.logger.Error("Failed to load users for dashboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	today := utils.TodayIn(time.Now(), h.location)
	c.JSON(http.StatusOK, usecase.ComputeDashboard(schedules, users, today))
}
