package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// StudentRepository provides access to student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_number, first_name, last_name, applicant_status, created_at, updated_at`

// FindByNumber fetches a student by the externally visible student number.
func (r *StudentRepository) FindByNumber(ctx context.Context, studentNumber string) (*models.Student, error) {
	var student models.Student
	query := fmt.Sprintf(`SELECT %s FROM students WHERE student_number = $1`, studentColumns)
	if err := r.db.GetContext(ctx, &student, query, studentNumber); err != nil {
		return nil, err
	}
	return &student, nil
}

// Search finds students whose last name contains the term, case-insensitive,
// ordered by student number. An exact student-number match is resolved by the
// service before falling back to this.
func (r *StudentRepository) Search(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	term := "%" + strings.TrimSpace(filter.Search) + "%"

	var total int
	countQuery := `SELECT COUNT(*) FROM students WHERE last_name ILIKE $1`
	if err := r.db.GetContext(ctx, &total, countQuery, term); err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	query := fmt.Sprintf(`SELECT %s FROM students WHERE last_name ILIKE $1
		ORDER BY student_number ASC LIMIT $2 OFFSET $3`, studentColumns)

	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, term, filter.PageSize, offset); err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// FindByIDForUpdateTx locks the student row for the duration of the
// transaction. Mutating enlistment flows take this lock first to serialise
// per-student changes.
func (r *StudentRepository) FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error) {
	var student models.Student
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 FOR UPDATE`, studentColumns)
	if err := tx.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateApplicantStatusTx sets the applicant status inside the transaction.
func (r *StudentRepository) UpdateApplicantStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status models.ApplicantStatus) error {
	query := `UPDATE students SET applicant_status = $1, updated_at = NOW() WHERE id = $2`
	_, err := tx.ExecContext(ctx, query, status, id)
	return err
}

// CountByStatus returns the number of students in the given status.
func (r *StudentRepository) CountByStatus(ctx context.Context, status models.ApplicantStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM students WHERE applicant_status = $1`
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, err
	}
	return count, nil
}
