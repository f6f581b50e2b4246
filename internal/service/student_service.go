package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type studentSearcher interface {
	FindByNumber(ctx context.Context, studentNumber string) (*models.Student, error)
	Search(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type subjectLogReader interface {
	ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.SubjectLog, error)
}

type snapshotProvider interface {
	Snapshot(ctx context.Context, studentNumber string) (*models.FinancialSnapshot, error)
}

// StudentAccount is the cashier's view of one student: identity, status, and
// the derived financial assessment.
type StudentAccount struct {
	Student   models.Student            `json:"student"`
	Financial *models.FinancialSnapshot `json:"financial"`
}

// StudentService serves the admin-facing student lookups.
type StudentService struct {
	students  studentSearcher
	logs      subjectLogReader
	financial snapshotProvider
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentSearcher, logs subjectLogReader, financial snapshotProvider, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, logs: logs, financial: financial, logger: logger}
}

// Search finds students by exact student number or last-name substring. An
// exact number match returns a single row regardless of the search term shape.
func (s *StudentService) Search(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	if filter.Search != "" {
		student, err := s.students.FindByNumber(ctx, filter.Search)
		if err == nil {
			pagination := &models.Pagination{Page: 1, PageSize: filter.PageSize, TotalCount: 1}
			return []models.Student{*student}, pagination, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up student")
		}
	}

	students, total, err := s.students.Search(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return students, pagination, nil
}

// Account returns the student's record with their financial snapshot.
func (s *StudentService) Account(ctx context.Context, studentNumber string) (*StudentAccount, error) {
	student, err := s.students.FindByNumber(ctx, studentNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	snapshot, err := s.financial.Snapshot(ctx, studentNumber)
	if err != nil {
		return nil, err
	}
	return &StudentAccount{Student: *student, Financial: snapshot}, nil
}

// SubjectHistory returns the student's enlistment audit trail, newest first.
func (s *StudentService) SubjectHistory(ctx context.Context, studentNumber string) ([]models.SubjectLog, error) {
	if _, err := s.students.FindByNumber(ctx, studentNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	logs, err := s.logs.ListByStudentNumber(ctx, studentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject history")
	}
	return logs, nil
}
