package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/questguide/questguide-backend/internal/response"
)

// UserHandler serves the admin statistics and the student performance view.
type UserHandler struct {
	statsService       StatsService
	performanceService PerformanceService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(statsService StatsService, performanceService PerformanceService) *UserHandler {
	return &UserHandler{
		statsService:       statsService,
		performanceService: performanceService,
	}
}

// ListStudents godoc
// GET /api/users/students
func (h *UserHandler) ListStudents(c *gin.Context) {
	students, err := h.statsService.Students(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.SuccessList(c, http.StatusOK, gin.H{"students": students}, len(students))
}

// AdminStats godoc
// GET /api/users/admin-stats
func (h *UserHandler) AdminStats(c *gin.Context) {
	stats, err := h.statsService.AdminStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Performance godoc
// GET /api/users/performance
// Returns the caller's analytics computed from their completed attempts.
func (h *UserHandler) Performance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	perf, err := h.performanceService.ForUser(c.Request.Context(), user)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"performance": perf})
}

// DashboardStats godoc
// GET /api/users/dashboard-stats
func (h *UserHandler) DashboardStats(c *gin.Context) {
	stats, err := h.statsService.Dashboard(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// ActivityHeatmap godoc
// GET /api/users/activity-heatmap
func (h *UserHandler) ActivityHeatmap(c *gin.Context) {
	heatmap, err := h.statsService.ActivityHeatmap(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, heatmap)
}
