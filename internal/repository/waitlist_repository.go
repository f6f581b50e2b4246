package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// WaitlistRepository provides access to waitlist entries.
type WaitlistRepository struct {
	db *sqlx.DB
}

// NewWaitlistRepository creates a waitlist repository.
func NewWaitlistRepository(db *sqlx.DB) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

const waitlistColumns = `waitlist_id, student_id, course_id, status, priority_date`

// HasWaitingTx reports whether the student already has a WAITING entry for
// the course.
func (r *WaitlistRepository) HasWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM student_waitlist
		WHERE student_id = $1 AND course_id = $2 AND status = $3)`
	if err := tx.GetContext(ctx, &exists, query, studentID, courseID, models.WaitlistStatusWaiting); err != nil {
		return false, err
	}
	return exists, nil
}

// InsertTx queues a new entry inside the transaction.
func (r *WaitlistRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.WaitlistEntry) error {
	query := `INSERT INTO student_waitlist (waitlist_id, student_id, course_id, status, priority_date)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := tx.ExecContext(ctx, query,
		entry.WaitlistID, entry.StudentID, entry.CourseID, entry.Status, entry.PriorityDate)
	return err
}

// FindByID fetches a waitlist entry by primary key.
func (r *WaitlistRepository) FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	query := `SELECT ` + waitlistColumns + ` FROM student_waitlist WHERE waitlist_id = $1`
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListWaitingTx locks and returns the WAITING entries for the course in
// priority order: earliest priority date first, ties broken by waitlist id.
// Promotion walks this list and skips waiters it cannot seat. SKIP LOCKED
// keeps concurrent promotions from double-serving one entry.
func (r *WaitlistRepository) ListWaitingTx(ctx context.Context, tx *sqlx.Tx, courseID string) ([]models.WaitlistEntry, error) {
	query := `SELECT ` + waitlistColumns + ` FROM student_waitlist
		WHERE course_id = $1 AND status = $2
		ORDER BY priority_date ASC, waitlist_id ASC
		FOR UPDATE SKIP LOCKED`

	entries := make([]models.WaitlistEntry, 0)
	if err := tx.SelectContext(ctx, &entries, query, courseID, models.WaitlistStatusWaiting); err != nil {
		return nil, err
	}
	return entries, nil
}

// CancelWaitingTx withdraws any WAITING entry the student holds for the
// course, inside the caller's transaction. A student seated directly must not
// stay in the queue, or promotion could hand them a second section.
func (r *WaitlistRepository) CancelWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) error {
	query := `UPDATE student_waitlist SET status = $1
		WHERE student_id = $2 AND course_id = $3 AND status = $4`
	_, err := tx.ExecContext(ctx, query,
		models.WaitlistStatusCancelled, studentID, courseID, models.WaitlistStatusWaiting)
	return err
}

// MarkPromotedTx flips a WAITING entry to PROMOTED inside the transaction.
func (r *WaitlistRepository) MarkPromotedTx(ctx context.Context, tx *sqlx.Tx, waitlistID string) error {
	query := `UPDATE student_waitlist SET status = $1
		WHERE waitlist_id = $2 AND status = $3`
	_, err := tx.ExecContext(ctx, query,
		models.WaitlistStatusPromoted, waitlistID, models.WaitlistStatusWaiting)
	return err
}

// MarkCancelled flips a WAITING entry to CANCELLED. Reports whether a row
// changed, so callers can reject cancels of promoted or already-cancelled
// entries.
func (r *WaitlistRepository) MarkCancelled(ctx context.Context, waitlistID string) (bool, error) {
	query := `UPDATE student_waitlist SET status = $1
		WHERE waitlist_id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query,
		models.WaitlistStatusCancelled, waitlistID, models.WaitlistStatusWaiting)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
