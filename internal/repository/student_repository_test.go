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

func TestStudentRepositorySearchOrdersByStudentNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM students WHERE last_name ILIKE $1`)).
		WithArgs("%cruz%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows([]string{"id", "student_number", "first_name", "last_name", "applicant_status", "created_at", "updated_at"}).
		AddRow("stu-1", "2024-00001", "Ana", "Cruz", models.ApplicantStatusPending, time.Now(), time.Now()).
		AddRow("stu-2", "2024-00002", "Ben", "Dela Cruz", models.ApplicantStatusEnrolled, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY student_number ASC`)).
		WithArgs("%cruz%", 20, 0).
		WillReturnRows(rows)

	students, total, err := repo.Search(context.Background(), models.StudentFilter{Search: "cruz", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, students, 2)
	require.Equal(t, "2024-00001", students[0].StudentNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateApplicantStatusTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE students SET applicant_status = $1`)).
		WithArgs(models.ApplicantStatusEnrolled, "stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)
	require.NoError(t, repo.UpdateApplicantStatusTx(context.Background(), tx, "stu-1", models.ApplicantStatusEnrolled))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
