package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// CourseRepository provides access to the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a course by primary key.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	query := `SELECT course_id, course_code, course_title, credit_units, active_status
		FROM courses WHERE course_id = $1`
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListActiveWithSections returns every section of every active course with
// its enrolled head count, for the cashier's course picker.
func (r *CourseRepository) ListActiveWithSections(ctx context.Context) ([]models.CourseSectionView, error) {
	query := `SELECT c.course_id, c.course_code, c.course_title, c.credit_units,
			s.section_id, s.section_code, s.max_capacity,
			COUNT(e.enlistment_id) AS enrolled_count
		FROM courses c
		JOIN class_sections s ON s.course_id = c.course_id
		LEFT JOIN student_enlistments e ON e.section_id = s.section_id
		WHERE c.active_status = TRUE
		GROUP BY c.course_id, c.course_code, c.course_title, c.credit_units,
			s.section_id, s.section_code, s.max_capacity
		ORDER BY c.course_code ASC, s.section_code ASC`

	views := make([]models.CourseSectionView, 0)
	if err := r.db.SelectContext(ctx, &views, query); err != nil {
		return nil, err
	}
	return views, nil
}
