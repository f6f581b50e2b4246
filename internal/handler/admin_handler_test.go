package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/enlistment-api/internal/models"
	"github.com/noah-isme/enlistment-api/internal/service"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type fakeDashboardSrv struct {
	summary    *service.DashboardSummary
	summaryErr error
	logs       []models.SubjectLog
	lastLimit  int
}

func (f *fakeDashboardSrv) Summary(context.Context) (*service.DashboardSummary, error) {
	return f.summary, f.summaryErr
}

func (f *fakeDashboardSrv) RecentLogs(_ context.Context, limit int) ([]models.SubjectLog, error) {
	f.lastLimit = limit
	return f.logs, nil
}

type fakeCourseCatalog struct {
	views []models.CourseSectionView
	err   error
}

func (f *fakeCourseCatalog) ListSections(context.Context) ([]models.CourseSectionView, error) {
	return f.views, f.err
}

func TestAdminHandlerDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(&fakeDashboardSrv{
		summary: &service.DashboardSummary{PendingStudents: 3, EnrolledStudents: 7},
	}, &fakeCourseCatalog{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)

	handler.Dashboard(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, float64(3), envelope.Data["pending_students"])
	assert.Equal(t, float64(7), envelope.Data["enrolled_students"])
}

func TestAdminHandlerDashboardError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(&fakeDashboardSrv{
		summaryErr: appErrors.ErrInternal,
	}, &fakeCourseCatalog{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)

	handler.Dashboard(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAdminHandlerCourses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(&fakeDashboardSrv{}, &fakeCourseCatalog{
		views: []models.CourseSectionView{
			{CourseCode: "MATH101", SectionCode: "A", Schedule: "Mon 9:00 AM-10:30 AM"},
		},
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/courses", nil)

	handler.Courses(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "MATH101")
	assert.Contains(t, rec.Body.String(), "Mon 9:00 AM-10:30 AM")
}

func TestAdminHandlerSubjectLogsLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewAdminHandler(srv, &fakeCourseCatalog{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/subject-logs?limit=25", nil)

	handler.SubjectLogs(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, srv.lastLimit)
}

func TestAdminHandlerSubjectLogsBadLimitFallsBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{}
	handler := NewAdminHandler(srv, &fakeCourseCatalog{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/subject-logs?limit=9999", nil)

	handler.SubjectLogs(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, srv.lastLimit)
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
