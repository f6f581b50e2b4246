package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enlistment-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestPaymentRepositorySumTuitionByReference(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(amount), 0) FROM payments`)).
		WithArgs("2024-00123", models.PaymentStatusCompleted, models.TuitionRemark).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4500.0))

	total, err := repo.SumTuitionByReference(context.Background(), "2024-00123")
	require.NoError(t, err)
	require.InDelta(t, 4500.0, total, 0.001)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositorySumTuitionExcludesOtherRemarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	// The predicate lives in SQL; assert the query carries the remarks filter.
	mock.ExpectQuery(regexp.QuoteMeta(`(remarks = $3 OR remarks IS NULL OR remarks = '')`)).
		WithArgs("2024-00123", models.PaymentStatusCompleted, models.TuitionRemark).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	total, err := repo.SumTuitionByReference(context.Background(), "2024-00123")
	require.NoError(t, err)
	require.Zero(t, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepositoryInsertTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPaymentRepository(db)

	mock.ExpectBegin()
	remarks := models.TuitionRemark
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO payments`)).
		WithArgs("WLK-1A2B3C4D", "2024-00123", 3000.0, "Cash (Over the Counter)",
			&remarks, sqlmock.AnyArg(), models.PaymentStatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.InsertTx(context.Background(), tx, &models.Payment{
		TransactionID:   "WLK-1A2B3C4D",
		ReferenceNumber: "2024-00123",
		Amount:          3000.0,
		PaymentMethod:   "Cash (Over the Counter)",
		Remarks:         &remarks,
		PaymentDate:     time.Now(),
		Status:          models.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
