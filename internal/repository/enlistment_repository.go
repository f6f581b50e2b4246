package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// EnlistmentRepository provides access to committed enlistments.
type EnlistmentRepository struct {
	db *sqlx.DB
}

// NewEnlistmentRepository creates an enlistment repository.
func NewEnlistmentRepository(db *sqlx.DB) *EnlistmentRepository {
	return &EnlistmentRepository{db: db}
}

// ExistsForCourseTx reports whether the student already holds any section of
// the course, under the caller's transaction.
func (r *EnlistmentRepository) ExistsForCourseTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM student_enlistments WHERE student_id = $1 AND course_id = $2)`
	if err := tx.GetContext(ctx, &exists, query, studentID, courseID); err != nil {
		return false, err
	}
	return exists, nil
}

// SumUnitsTx totals the credit units of the student's current enlistments,
// under the caller's transaction.
func (r *EnlistmentRepository) SumUnitsTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int, error) {
	var units int
	query := `SELECT COALESCE(SUM(c.credit_units), 0) FROM student_enlistments e
		JOIN courses c ON c.course_id = e.course_id WHERE e.student_id = $1`
	if err := tx.GetContext(ctx, &units, query, studentID); err != nil {
		return 0, err
	}
	return units, nil
}

// ListByStudent returns the student's enlistments as assessment rows,
// ordered by course code.
func (r *EnlistmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnlistedSubject, error) {
	query := `SELECT e.enlistment_id, e.section_id, c.course_code, c.course_title, c.credit_units
		FROM student_enlistments e
		JOIN courses c ON c.course_id = e.course_id
		WHERE e.student_id = $1
		ORDER BY c.course_code ASC`

	subjects := make([]models.EnlistedSubject, 0)
	if err := r.db.SelectContext(ctx, &subjects, query, studentID); err != nil {
		return nil, err
	}
	return subjects, nil
}

// FindForRemovalTx resolves an enlistment id to its course identity, but only
// when it belongs to the given student. Returns (nil, nil) when the row does
// not exist or belongs to someone else; bulk removal skips those silently.
func (r *EnlistmentRepository) FindForRemovalTx(ctx context.Context, tx *sqlx.Tx, enlistmentID, studentID string) (*models.EnlistmentRemoval, error) {
	var removal models.EnlistmentRemoval
	query := `SELECT e.enlistment_id, e.student_id, e.course_id, c.course_code, c.course_title
		FROM student_enlistments e
		JOIN courses c ON c.course_id = e.course_id
		WHERE e.enlistment_id = $1 AND e.student_id = $2`
	if err := tx.GetContext(ctx, &removal, query, enlistmentID, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &removal, nil
}

// InsertTx writes a new enlistment inside the transaction.
func (r *EnlistmentRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, enlistment *models.Enlistment) error {
	query := `INSERT INTO student_enlistments (enlistment_id, student_id, course_id, section_id)
		VALUES ($1, $2, $3, $4)`
	_, err := tx.ExecContext(ctx, query,
		enlistment.EnlistmentID, enlistment.StudentID, enlistment.CourseID, enlistment.SectionID)
	return err
}

// DeleteTx removes an enlistment inside the transaction.
func (r *EnlistmentRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, enlistmentID string) error {
	query := `DELETE FROM student_enlistments WHERE enlistment_id = $1`
	_, err := tx.ExecContext(ctx, query, enlistmentID)
	return err
}
