package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// ScheduleRepository provides access to weekly class schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListBySection returns the weekly blocks of one section, ordered for display.
func (r *ScheduleRepository) ListBySection(ctx context.Context, sectionID string) ([]models.ClassSchedule, error) {
	query := `SELECT section_id, day_of_week, start_time, end_time
		FROM class_schedules WHERE section_id = $1
		ORDER BY day_of_week ASC, start_time ASC`

	schedules := make([]models.ClassSchedule, 0)
	if err := r.db.SelectContext(ctx, &schedules, query, sectionID); err != nil {
		return nil, err
	}
	return schedules, nil
}

// ListByStudent returns every schedule block across the student's current
// enlistments, joined with course titles for conflict reporting.
func (r *ScheduleRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentSchedule, error) {
	query := `SELECT cs.section_id, cs.day_of_week, cs.start_time, cs.end_time, c.course_title
		FROM student_enlistments e
		JOIN class_schedules cs ON cs.section_id = e.section_id
		JOIN courses c ON c.course_id = e.course_id
		WHERE e.student_id = $1
		ORDER BY cs.day_of_week ASC, cs.start_time ASC`

	schedules := make([]models.StudentSchedule, 0)
	if err := r.db.SelectContext(ctx, &schedules, query, studentID); err != nil {
		return nil, err
	}
	return schedules, nil
}
