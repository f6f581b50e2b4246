package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type studentCounter interface {
	CountByStatus(ctx context.Context, status models.ApplicantStatus) (int, error)
}

type recentLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.SubjectLog, error)
}

// DashboardSummary is the admin landing view: the enrollment funnel plus the
// latest enlistment activity.
type DashboardSummary struct {
	PendingStudents  int                 `json:"pending_students"`
	EnrolledStudents int                 `json:"enrolled_students"`
	RecentActivity   []models.SubjectLog `json:"recent_activity"`
}

// DashboardService aggregates counts for the admin landing page.
type DashboardService struct {
	students studentCounter
	logs     recentLogReader
	logger   *zap.Logger
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(students studentCounter, logs recentLogReader, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{students: students, logs: logs, logger: logger}
}

// Summary returns the applicant status counts and recent subject activity.
func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	pending, err := s.students.CountByStatus(ctx, models.ApplicantStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending students")
	}
	enrolled, err := s.students.CountByStatus(ctx, models.ApplicantStatusEnrolled)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrolled students")
	}
	recent, err := s.logs.ListRecent(ctx, 20)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent activity")
	}

	return &DashboardSummary{
		PendingStudents:  pending,
		EnrolledStudents: enrolled,
		RecentActivity:   recent,
	}, nil
}

// RecentLogs returns the latest enlistment additions and removals across all
// students, newest first.
func (s *DashboardService) RecentLogs(ctx context.Context, limit int) ([]models.SubjectLog, error) {
	logs, err := s.logs.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject logs")
	}
	return logs, nil
}
