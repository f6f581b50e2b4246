package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/enlistment-api/internal/models"
	"github.com/noah-isme/enlistment-api/internal/service"
	"github.com/noah-isme/enlistment-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*service.DashboardSummary, error)
	RecentLogs(ctx context.Context, limit int) ([]models.SubjectLog, error)
}

type courseCatalog interface {
	ListSections(ctx context.Context) ([]models.CourseSectionView, error)
}

// AdminHandler serves the admin dashboard and catalog views.
type AdminHandler struct {
	dashboard dashboardService
	courses   courseCatalog
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(dashboard dashboardService, courses courseCatalog) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, courses: courses}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Description Applicant status counts plus recent enlistment activity
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
// @Security BearerAuth
func (h *AdminHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Courses godoc
// @Summary Course picker
// @Description Active courses with their sections, loads and schedules
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/courses [get]
// @Security BearerAuth
func (h *AdminHandler) Courses(c *gin.Context) {
	views, err := h.courses.ListSections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// SubjectLogs godoc
// @Summary Recent subject logs
// @Description Latest enlistment additions and removals across all students
// @Tags Admin
// @Produce json
// @Param limit query int false "Max rows, default 50"
// @Success 200 {object} response.Envelope
// @Router /admin/subject-logs [get]
// @Security BearerAuth
func (h *AdminHandler) SubjectLogs(c *gin.Context) {
	logs, err := h.dashboard.RecentLogs(c.Request.Context(), parseLimit(c, 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

func parseLimit(c *gin.Context, fallback int) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(fallback)))
	if err != nil || limit < 1 || limit > 200 {
		return fallback
	}
	return limit
}
