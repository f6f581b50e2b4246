package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// SectionRepository provides access to course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `section_id, course_id, section_code, max_capacity`

// FindByIDForUpdateTx locks the section row so the capacity check and the
// insert that follows see a stable enrolled count.
func (r *SectionRepository) FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Section, error) {
	var section models.Section
	query := `SELECT ` + sectionColumns + ` FROM class_sections WHERE section_id = $1 FOR UPDATE`
	if err := tx.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// EnrolledCountTx counts committed enlistments for the section inside the
// transaction. Call only after FindByIDForUpdateTx.
func (r *SectionRepository) EnrolledCountTx(ctx context.Context, tx *sqlx.Tx, sectionID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM student_enlistments WHERE section_id = $1`
	if err := tx.GetContext(ctx, &count, query, sectionID); err != nil {
		return 0, err
	}
	return count, nil
}

// ListByCourse returns the sections of a course with head counts, ordered by
// section id. Promotion takes the first section with a free seat in this
// order so the choice is deterministic.
func (r *SectionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.SectionStanding, error) {
	query := `SELECT s.section_id, s.course_id, s.section_code, s.max_capacity,
			COUNT(e.enlistment_id) AS enrolled_count
		FROM class_sections s
		LEFT JOIN student_enlistments e ON e.section_id = s.section_id
		WHERE s.course_id = $1
		GROUP BY s.section_id, s.course_id, s.section_code, s.max_capacity
		ORDER BY s.section_id ASC`

	standings := make([]models.SectionStanding, 0)
	if err := r.db.SelectContext(ctx, &standings, query, courseID); err != nil {
		return nil, err
	}
	return standings, nil
}
