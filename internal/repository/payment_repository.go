package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/enlistment-api/internal/models"
)

// PaymentRepository provides access to the append-only payment ledger.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// SumTuitionByReference totals completed tuition payments for the reference
// number. A payment counts toward tuition when its remarks are the tuition
// sentinel, NULL, or empty.
func (r *PaymentRepository) SumTuitionByReference(ctx context.Context, referenceNumber string) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE reference_number = $1 AND status = $2
		AND (remarks = $3 OR remarks IS NULL OR remarks = '')`
	if err := r.db.GetContext(ctx, &total, query,
		referenceNumber, models.PaymentStatusCompleted, models.TuitionRemark); err != nil {
		return 0, err
	}
	return total, nil
}

// SumTuitionByReferenceTx is SumTuitionByReference under the caller's
// transaction, so the status transition sees the payment just appended.
func (r *PaymentRepository) SumTuitionByReferenceTx(ctx context.Context, tx *sqlx.Tx, referenceNumber string) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE reference_number = $1 AND status = $2
		AND (remarks = $3 OR remarks IS NULL OR remarks = '')`
	if err := tx.GetContext(ctx, &total, query,
		referenceNumber, models.PaymentStatusCompleted, models.TuitionRemark); err != nil {
		return 0, err
	}
	return total, nil
}

// ListByReference returns the full payment history for the reference number,
// newest first.
func (r *PaymentRepository) ListByReference(ctx context.Context, referenceNumber string) ([]models.Payment, error) {
	query := `SELECT transaction_id, reference_number, amount, payment_method, remarks, payment_date, status
		FROM payments WHERE reference_number = $1
		ORDER BY payment_date DESC, transaction_id DESC`

	payments := make([]models.Payment, 0)
	if err := r.db.SelectContext(ctx, &payments, query, referenceNumber); err != nil {
		return nil, err
	}
	return payments, nil
}

// InsertTx appends a payment row inside the transaction.
func (r *PaymentRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error {
	query := `INSERT INTO payments (transaction_id, reference_number, amount, payment_method, remarks, payment_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := tx.ExecContext(ctx, query,
		payment.TransactionID, payment.ReferenceNumber, payment.Amount,
		payment.PaymentMethod, payment.Remarks, payment.PaymentDate, payment.Status)
	return err
}
