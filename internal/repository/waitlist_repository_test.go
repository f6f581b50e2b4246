package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enlistment-api/internal/models"
)

func TestWaitlistRepositoryListWaitingTxOrdersByPriority(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"waitlist_id", "student_id", "course_id", "status", "priority_date"}).
		AddRow("wl-1", "stu-1", "crs-1", models.WaitlistStatusWaiting, time.Now()).
		AddRow("wl-2", "stu-2", "crs-1", models.WaitlistStatusWaiting, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY priority_date ASC, waitlist_id ASC`)).
		WithArgs("crs-1", models.WaitlistStatusWaiting).
		WillReturnRows(rows)
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	entries, err := repo.ListWaitingTx(context.Background(), tx, "crs-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "wl-1", entries[0].WaitlistID)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryListWaitingTxEmptyQueue(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FOR UPDATE SKIP LOCKED`)).
		WithArgs("crs-1", models.WaitlistStatusWaiting).
		WillReturnRows(sqlmock.NewRows([]string{"waitlist_id", "student_id", "course_id", "status", "priority_date"}))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	entries, err := repo.ListWaitingTx(context.Background(), tx, "crs-1")
	require.NoError(t, err)
	require.Empty(t, entries)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryCancelWaitingTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`WHERE student_id = $2 AND course_id = $3 AND status = $4`)).
		WithArgs(models.WaitlistStatusCancelled, "stu-1", "crs-1", models.WaitlistStatusWaiting).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.CancelWaitingTx(context.Background(), tx, "stu-1", "crs-1"))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryMarkCancelled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE student_waitlist SET status = $1`)).
		WithArgs(models.WaitlistStatusCancelled, "wl-1", models.WaitlistStatusWaiting).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cancelled, err := repo.MarkCancelled(context.Background(), "wl-1")
	require.NoError(t, err)
	require.True(t, cancelled)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWaitlistRepositoryMarkCancelledNotWaiting(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWaitlistRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE student_waitlist SET status = $1`)).
		WithArgs(models.WaitlistStatusCancelled, "wl-1", models.WaitlistStatusWaiting).
		WillReturnResult(sqlmock.NewResult(0, 0))

	cancelled, err := repo.MarkCancelled(context.Background(), "wl-1")
	require.NoError(t, err)
	require.False(t, cancelled)
	require.NoError(t, mock.ExpectationsWereMet())
}
