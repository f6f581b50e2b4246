package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// SubjectLogRepository provides access to the enlistment audit trail.
type SubjectLogRepository struct {
	db *sqlx.DB
}

// NewSubjectLogRepository creates a subject log repository.
func NewSubjectLogRepository(db *sqlx.DB) *SubjectLogRepository {
	return &SubjectLogRepository{db: db}
}

// InsertTx writes an audit row in the same transaction as the enlistment
// change it records.
func (r *SubjectLogRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, log *models.SubjectLog) error {
	query := `INSERT INTO subject_logs (id, student_number, action, course_code, course_title, timestamp, performed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		log.ID, log.StudentNumber, log.Action, log.CourseCode,
		log.CourseTitle, log.Timestamp, log.PerformedBy)
	return err
}

// ListByStudentNumber returns the student's enlistment history, newest first.
func (r *SubjectLogRepository) ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.SubjectLog, error) {
	query := `SELECT id, student_number, action, course_code, course_title, timestamp, performed_by
		FROM subject_logs WHERE student_number = $1
		ORDER BY timestamp DESC, id DESC`

	logs := make([]models.SubjectLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, studentNumber); err != nil {
		return nil, err
	}
	return logs, nil
}

// ListRecent returns the latest audit rows across all students.
func (r *SubjectLogRepository) ListRecent(ctx context.Context, limit int) ([]models.SubjectLog, error) {
	query := `SELECT id, student_number, action, course_code, course_title, timestamp, performed_by
		FROM subject_logs ORDER BY timestamp DESC, id DESC LIMIT $1`

	logs := make([]models.SubjectLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, err
	}
	return logs, nil
}
