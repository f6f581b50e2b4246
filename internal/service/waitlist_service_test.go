package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type mockWaitlistStore struct {
	waiting    map[string]bool
	entries    []models.WaitlistEntry
	byID       map[string]models.WaitlistEntry
	inserted   []models.WaitlistEntry
	promoted   []string
	cancelled  []string
	cancelable map[string]bool
}

func (m *mockWaitlistStore) HasWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) (bool, error) {
	return m.waiting[studentID+"/"+courseID], nil
}

func (m *mockWaitlistStore) InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.WaitlistEntry) error {
	m.inserted = append(m.inserted, *entry)
	return nil
}

func (m *mockWaitlistStore) ListWaitingTx(ctx context.Context, tx *sqlx.Tx, courseID string) ([]models.WaitlistEntry, error) {
	return m.entries, nil
}

func (m *mockWaitlistStore) MarkPromotedTx(ctx context.Context, tx *sqlx.Tx, waitlistID string) error {
	m.promoted = append(m.promoted, waitlistID)
	return nil
}

func (m *mockWaitlistStore) CancelWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) error {
	m.cancelled = append(m.cancelled, studentID+"/"+courseID)
	return nil
}

func (m *mockWaitlistStore) MarkCancelled(ctx context.Context, waitlistID string) (bool, error) {
	m.cancelled = append(m.cancelled, waitlistID)
	return m.cancelable[waitlistID], nil
}

func (m *mockWaitlistStore) FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	if e, ok := m.byID[id]; ok {
		return &e, nil
	}
	return nil, sql.ErrNoRows
}

type waitlistFixture struct {
	svc         *WaitlistService
	waitlist    *mockWaitlistStore
	sections    *mockSectionStore
	enlistments *mockEnlistStore
	students    *mockCoordStudents
	logs        *mockSubjectLogs
	snapshots   *mockInvalidator
	schedules   *mockStudentSchedules
	sectionSch  *mockSectionScheduleReader
}

func newWaitlistFixture() *waitlistFixture {
	f := &waitlistFixture{
		waitlist: &mockWaitlistStore{
			waiting:    map[string]bool{},
			byID:       map[string]models.WaitlistEntry{},
			cancelable: map[string]bool{},
		},
		sections: &mockSectionStore{
			sections: map[string]models.Section{
				"sec-1": {SectionID: "sec-1", CourseID: "crs-1", SectionCode: "A", MaxCapacity: 2},
			},
			enrolled: map[string]int{"sec-1": 1},
			standings: []models.SectionStanding{
				{Section: models.Section{SectionID: "sec-1", CourseID: "crs-1", SectionCode: "A", MaxCapacity: 2}, EnrolledCount: 1},
			},
		},
		enlistments: &mockEnlistStore{
			exists: map[string]bool{},
			units:  map[string]int{},
		},
		students: &mockCoordStudents{
			byID: map[string]models.Student{
				"stu-1": {ID: "stu-1", StudentNumber: "2024-00001", ApplicantStatus: models.ApplicantStatusPending},
				"stu-2": {ID: "stu-2", StudentNumber: "2024-00002", ApplicantStatus: models.ApplicantStatusPending},
			},
		},
		logs:       &mockSubjectLogs{},
		snapshots:  &mockInvalidator{},
		schedules:  &mockStudentSchedules{byStudent: map[string][]models.StudentSchedule{}},
		sectionSch: &mockSectionScheduleReader{blocks: map[string][]models.ClassSchedule{}},
	}

	courses := &mockCourseReader{courses: map[string]models.Course{
		"crs-1": {CourseID: "crs-1", CourseCode: "MATH101", CourseTitle: "Calculus I", CreditUnits: 3, ActiveStatus: true},
	}}

	f.svc = NewWaitlistService(
		mockTxRunner{},
		f.waitlist,
		f.sections,
		f.enlistments,
		courses,
		f.students,
		f.schedules,
		f.sectionSch,
		f.logs,
		f.snapshots,
		NewScheduleChecker(),
		nil,
		24,
		zap.NewNop(),
	)
	return f
}

func waiter(id, studentID string, at time.Time) models.WaitlistEntry {
	return models.WaitlistEntry{
		WaitlistID:   id,
		StudentID:    studentID,
		CourseID:     "crs-1",
		Status:       models.WaitlistStatusWaiting,
		PriorityDate: at,
	}
}

func TestEnqueueTxInsertsWaitingEntry(t *testing.T) {
	f := newWaitlistFixture()

	now := time.Now().UTC()
	err := f.svc.EnqueueTx(context.Background(), nil, "stu-1", "crs-1", now)
	require.NoError(t, err)
	require.Len(t, f.waitlist.inserted, 1)
	assert.Equal(t, models.WaitlistStatusWaiting, f.waitlist.inserted[0].Status)
	assert.Equal(t, now, f.waitlist.inserted[0].PriorityDate)
}

func TestEnqueueTxDuplicateIsNoOp(t *testing.T) {
	f := newWaitlistFixture()
	f.waitlist.waiting["stu-1/crs-1"] = true

	err := f.svc.EnqueueTx(context.Background(), nil, "stu-1", "crs-1", time.Now())
	require.NoError(t, err)
	assert.Empty(t, f.waitlist.inserted)
}

func TestCancelWaitingTxWithdrawsCourseEntry(t *testing.T) {
	f := newWaitlistFixture()

	err := f.svc.CancelWaitingTx(context.Background(), nil, "stu-1", "crs-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1/crs-1"}, f.waitlist.cancelled)
}

func TestPromoteFromWaitlistPromotesEarliestWaiter(t *testing.T) {
	f := newWaitlistFixture()
	base := time.Now().UTC()
	f.waitlist.entries = []models.WaitlistEntry{
		waiter("wl-1", "stu-1", base),
		waiter("wl-2", "stu-2", base.Add(time.Hour)),
	}

	err := f.svc.PromoteFromWaitlist(context.Background(), "crs-1")
	require.NoError(t, err)

	require.Len(t, f.enlistments.inserted, 1)
	assert.Equal(t, "stu-1", f.enlistments.inserted[0].StudentID)
	assert.Equal(t, "sec-1", f.enlistments.inserted[0].SectionID)
	assert.Equal(t, []string{"wl-1"}, f.waitlist.promoted)

	require.Len(t, f.logs.logs, 1)
	assert.Equal(t, models.SubjectLogAdded, f.logs.logs[0].Action)
	assert.Equal(t, SystemActor, f.logs.logs[0].PerformedBy)
	assert.Equal(t, "2024-00001", f.logs.logs[0].StudentNumber)
	assert.Equal(t, []string{"2024-00001"}, f.snapshots.invalidated)
}

func TestPromoteFromWaitlistSkipsOverCapWaiter(t *testing.T) {
	f := newWaitlistFixture()
	base := time.Now().UTC()
	f.waitlist.entries = []models.WaitlistEntry{
		waiter("wl-1", "stu-1", base),
		waiter("wl-2", "stu-2", base.Add(time.Hour)),
	}
	f.enlistments.units["stu-1"] = 23

	err := f.svc.PromoteFromWaitlist(context.Background(), "crs-1")
	require.NoError(t, err)

	// stu-1 would exceed the cap at 23+3; stu-2 is promoted instead and
	// wl-1 stays WAITING.
	require.Len(t, f.enlistments.inserted, 1)
	assert.Equal(t, "stu-2", f.enlistments.inserted[0].StudentID)
	assert.Equal(t, []string{"wl-2"}, f.waitlist.promoted)
}

func TestPromoteFromWaitlistSkipsConflictingWaiter(t *testing.T) {
	f := newWaitlistFixture()
	base := time.Now().UTC()
	f.waitlist.entries = []models.WaitlistEntry{
		waiter("wl-1", "stu-1", base),
		waiter("wl-2", "stu-2", base.Add(time.Hour)),
	}
	f.sectionSch.blocks["sec-1"] = []models.ClassSchedule{
		{SectionID: "sec-1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:30:00"},
	}
	f.schedules.byStudent["stu-1"] = []models.StudentSchedule{{
		ClassSchedule: models.ClassSchedule{SectionID: "sec-9", DayOfWeek: 1, StartTime: "10:00:00", EndTime: "11:00:00"},
		CourseTitle:   "Philosophy",
	}}

	err := f.svc.PromoteFromWaitlist(context.Background(), "crs-1")
	require.NoError(t, err)

	require.Len(t, f.enlistments.inserted, 1)
	assert.Equal(t, "stu-2", f.enlistments.inserted[0].StudentID)
}

func TestPromoteFromWaitlistNoFreeSection(t *testing.T) {
	f := newWaitlistFixture()
	f.sections.enrolled["sec-1"] = 2
	f.waitlist.entries = []models.WaitlistEntry{waiter("wl-1", "stu-1", time.Now())}

	err := f.svc.PromoteFromWaitlist(context.Background(), "crs-1")
	require.NoError(t, err)
	assert.Empty(t, f.enlistments.inserted)
	assert.Empty(t, f.waitlist.promoted)
}

func TestPromoteFromWaitlistNoWaiters(t *testing.T) {
	f := newWaitlistFixture()

	err := f.svc.PromoteFromWaitlist(context.Background(), "crs-1")
	require.NoError(t, err)
	assert.Empty(t, f.enlistments.inserted)
}

func TestPromoteFromWaitlistSkipsAlreadyEnlistedWaiter(t *testing.T) {
	f := newWaitlistFixture()
	f.waitlist.entries = []models.WaitlistEntry{waiter("wl-1", "stu-1", time.Now())}
	f.enlistments.exists["stu-1/crs-1"] = true

	err := f.svc.PromoteFromWaitlist(context.Background(), "crs-1")
	require.NoError(t, err)
	assert.Empty(t, f.enlistments.inserted)
	assert.Empty(t, f.waitlist.promoted)
}

func TestCancelWaitingEntry(t *testing.T) {
	f := newWaitlistFixture()
	f.waitlist.cancelable["wl-1"] = true

	require.NoError(t, f.svc.Cancel(context.Background(), "wl-1"))
	assert.Equal(t, []string{"wl-1"}, f.waitlist.cancelled)
}

func TestCancelUnknownEntry(t *testing.T) {
	f := newWaitlistFixture()

	err := f.svc.Cancel(context.Background(), "wl-missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCancelPromotedEntry(t *testing.T) {
	f := newWaitlistFixture()
	f.waitlist.byID["wl-1"] = models.WaitlistEntry{WaitlistID: "wl-1", Status: models.WaitlistStatusPromoted}

	err := f.svc.Cancel(context.Background(), "wl-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConstraintViolation.Code, appErrors.FromError(err).Code)
}
