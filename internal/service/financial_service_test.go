package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	"github.com/noah-isme/enlistment-api/pkg/config"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type mockStudentReader struct {
	students map[string]models.Student
}

func (m *mockStudentReader) FindByNumber(ctx context.Context, studentNumber string) (*models.Student, error) {
	if s, ok := m.students[studentNumber]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

type mockSubjectReader struct {
	subjects map[string][]models.EnlistedSubject
}

func (m *mockSubjectReader) ListByStudent(ctx context.Context, studentID string) ([]models.EnlistedSubject, error) {
	return m.subjects[studentID], nil
}

type mockSectionScheduleReader struct {
	blocks map[string][]models.ClassSchedule
}

func (m *mockSectionScheduleReader) ListBySection(ctx context.Context, sectionID string) ([]models.ClassSchedule, error) {
	return m.blocks[sectionID], nil
}

type mockPaymentReader struct {
	tuition float64
	history []models.Payment
}

func (m *mockPaymentReader) SumTuitionByReference(ctx context.Context, referenceNumber string) (float64, error) {
	return m.tuition, nil
}

func (m *mockPaymentReader) ListByReference(ctx context.Context, referenceNumber string) ([]models.Payment, error) {
	return m.history, nil
}

type mockSnapshotCache struct {
	store   map[string][]byte
	sets    int
	deletes []string
}

func (m *mockSnapshotCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (m *mockSnapshotCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	return nil
}

func (m *mockSnapshotCache) Delete(ctx context.Context, key string) error {
	m.deletes = append(m.deletes, key)
	return nil
}

func testFinancialConfig() config.FinancialConfig {
	return config.FinancialConfig{
		RatePerUnit:      1500.00,
		MiscFees:         7431.00,
		OtherFees:        18562.00,
		Downpayment:      3000.00,
		InstallmentCount: 8,
		InstallmentDates: []string{
			"Aug. 30 2026", "Sep. 15 2026", "Sep. 30 2026", "Oct. 15 2026",
			"Oct. 30 2026", "Nov. 15 2026", "Nov. 30 2026", "Dec. 10 2026",
		},
		PaymentTolerance: 0.01,
		SnapshotCacheTTL: time.Minute,
	}
}

func newFinancialFixture(units int, tuitionPaid float64) (*FinancialService, *mockSnapshotCache) {
	students := &mockStudentReader{students: map[string]models.Student{
		"2024-00123": {ID: "stu-1", StudentNumber: "2024-00123", ApplicantStatus: models.ApplicantStatusPending},
	}}

	var subjects []models.EnlistedSubject
	if units > 0 {
		subjects = []models.EnlistedSubject{{
			EnlistmentID: "enl-1",
			SectionID:    "sec-1",
			CourseCode:   "MATH101",
			CourseTitle:  "Calculus I",
			CreditUnits:  units,
		}}
	}

	cache := &mockSnapshotCache{}
	svc := NewFinancialService(
		students,
		&mockSubjectReader{subjects: map[string][]models.EnlistedSubject{"stu-1": subjects}},
		&mockSectionScheduleReader{blocks: map[string][]models.ClassSchedule{
			"sec-1": {{SectionID: "sec-1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:30:00"}},
		}},
		&mockPaymentReader{tuition: tuitionPaid},
		cache,
		NewScheduleChecker(),
		testFinancialConfig(),
		24,
		zap.NewNop(),
	)
	return svc, cache
}

func TestSnapshotEighteenUnits(t *testing.T) {
	svc, cache := newFinancialFixture(18, 3500.00)

	snap, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)

	assert.Equal(t, 18, snap.TotalUnits)
	assert.Equal(t, 18, snap.UnitsCharged)
	assert.InDelta(t, 27000.00, snap.TuitionTotal, 0.001)
	assert.InDelta(t, 7431.00, snap.MiscFees, 0.001)
	assert.InDelta(t, 18562.00, snap.OtherFees, 0.001)
	assert.InDelta(t, 52993.00, snap.TotalAssessment, 0.001)
	assert.InDelta(t, 3500.00, snap.TotalTuitionPaid, 0.001)
	assert.InDelta(t, 49493.00, snap.OutstandingBalance, 0.001)
	assert.Equal(t, models.InstallmentPaid, snap.DownpaymentStatus)

	require.Len(t, snap.Installments, 8)
	assert.Equal(t, "1st Installment", snap.Installments[0].Label)
	assert.Equal(t, "8th Installment", snap.Installments[7].Label)
	assert.Equal(t, "Aug. 30 2026", snap.Installments[0].DueDate)
	// First threshold is 3000 + 49993/8 = 9249.125; 3500 paid is well short.
	assert.Equal(t, models.InstallmentUnpaid, snap.Installments[0].Status)
	assert.InDelta(t, 49993.0/8, snap.Installments[0].Amount, 0.001)

	require.Len(t, snap.EnlistedSubjects, 1)
	assert.Equal(t, "Mon 9:00 AM-10:30 AM", snap.EnlistedSubjects[0].Schedule)
	assert.Equal(t, 1, cache.sets)
}

func TestSnapshotUnitsChargedCapped(t *testing.T) {
	svc, _ := newFinancialFixture(27, 0)

	snap, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)

	assert.Equal(t, 27, snap.TotalUnits)
	assert.Equal(t, 24, snap.UnitsCharged)
	assert.InDelta(t, 36000.00, snap.TuitionTotal, 0.001)
}

func TestSnapshotNoEnlistmentsNoFixedFees(t *testing.T) {
	svc, _ := newFinancialFixture(0, 0)

	snap, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)

	assert.Zero(t, snap.TotalUnits)
	assert.Zero(t, snap.TuitionTotal)
	assert.Zero(t, snap.MiscFees)
	assert.Zero(t, snap.OtherFees)
	assert.Zero(t, snap.TotalAssessment)

	// Negative remainder yields zero-amount installments.
	require.Len(t, snap.Installments, 8)
	for _, inst := range snap.Installments {
		assert.Zero(t, inst.Amount)
	}
}

func TestSnapshotOverpaymentGoesNegative(t *testing.T) {
	svc, _ := newFinancialFixture(18, 60000.00)

	snap, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)

	assert.InDelta(t, -7007.00, snap.OutstandingBalance, 0.001)
	for _, inst := range snap.Installments {
		assert.Equal(t, models.InstallmentPaid, inst.Status)
	}
}

func TestSnapshotInstallmentToleranceAtThreshold(t *testing.T) {
	// 18 units: remainder 49993, amount 6249.125, first threshold 9249.125.
	svc, _ := newFinancialFixture(18, 9249.12)

	snap, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPaid, snap.Installments[0].Status)
	assert.Equal(t, models.InstallmentUnpaid, snap.Installments[1].Status)
}

func TestSnapshotRepeatedReadsAreIdentical(t *testing.T) {
	students := &mockStudentReader{students: map[string]models.Student{
		"2024-00123": {ID: "stu-1", StudentNumber: "2024-00123", ApplicantStatus: models.ApplicantStatusPending},
	}}
	subjects := map[string][]models.EnlistedSubject{"stu-1": {{
		EnlistmentID: "enl-1",
		SectionID:    "sec-1",
		CourseCode:   "MATH101",
		CourseTitle:  "Calculus I",
		CreditUnits:  18,
	}}}
	svc := NewFinancialService(
		students,
		&mockSubjectReader{subjects: subjects},
		&mockSectionScheduleReader{blocks: map[string][]models.ClassSchedule{
			"sec-1": {{SectionID: "sec-1", DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:30:00"}},
		}},
		&mockPaymentReader{tuition: 3500.00},
		nil,
		NewScheduleChecker(),
		testFinancialConfig(),
		24,
		zap.NewNop(),
	)

	first, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := svc.Snapshot(context.Background(), "2024-00123")
	require.NoError(t, err)

	assert.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestSnapshotUnknownStudent(t *testing.T) {
	svc, _ := newFinancialFixture(0, 0)

	_, err := svc.Snapshot(context.Background(), "9999-99999")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrStudentNotFound.Code, appErr.Code)
}

func TestInvalidateDropsSnapshotKey(t *testing.T) {
	svc, cache := newFinancialFixture(18, 0)

	svc.Invalidate(context.Background(), "2024-00123")
	require.Len(t, cache.deletes, 1)
	assert.Equal(t, "finsnap:2024-00123", cache.deletes[0])
}
