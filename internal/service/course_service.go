package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type courseCatalogReader interface {
	ListActiveWithSections(ctx context.Context) ([]models.CourseSectionView, error)
}

// CourseService serves the cashier's course picker.
type CourseService struct {
	courses   courseCatalogReader
	schedules sectionScheduleReader
	checker   *ScheduleChecker
	logger    *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(courses courseCatalogReader, schedules sectionScheduleReader, checker *ScheduleChecker, logger *zap.Logger) *CourseService {
	if checker == nil {
		checker = NewScheduleChecker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, schedules: schedules, checker: checker, logger: logger}
}

// ListSections returns every section of every active course with its load
// and display schedule.
func (s *CourseService) ListSections(ctx context.Context) ([]models.CourseSectionView, error) {
	views, err := s.courses.ListActiveWithSections(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course sections")
	}

	for i := range views {
		blocks, err := s.schedules.ListBySection(ctx, views[i].SectionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
		}
		views[i].Schedule = s.checker.FormatSchedule(blocks)
	}
	return views, nil
}
