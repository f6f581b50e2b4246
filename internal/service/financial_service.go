package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	"github.com/noah-isme/enlistment-api/pkg/config"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

type studentNumberReader interface {
	FindByNumber(ctx context.Context, studentNumber string) (*models.Student, error)
}

type enlistedSubjectReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnlistedSubject, error)
}

type sectionScheduleReader interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.ClassSchedule, error)
}

type paymentReader interface {
	SumTuitionByReference(ctx context.Context, referenceNumber string) (float64, error)
	ListByReference(ctx context.Context, referenceNumber string) ([]models.Payment, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FinancialService derives a student's assessment from committed enlistments
// and the payment ledger. It is read-only; snapshots are cached briefly and
// invalidated by the flows that change the inputs.
type FinancialService struct {
	students  studentNumberReader
	subjects  enlistedSubjectReader
	schedules sectionScheduleReader
	payments  paymentReader
	cache     snapshotCache
	checker   *ScheduleChecker
	cfg       config.FinancialConfig
	maxUnits  int
	logger    *zap.Logger
}

// NewFinancialService constructs FinancialService. The cache may be nil.
// maxUnits caps the units charged, matching the enlistment unit cap.
func NewFinancialService(
	students studentNumberReader,
	subjects enlistedSubjectReader,
	schedules sectionScheduleReader,
	payments paymentReader,
	cache snapshotCache,
	checker *ScheduleChecker,
	cfg config.FinancialConfig,
	maxUnits int,
	logger *zap.Logger,
) *FinancialService {
	if checker == nil {
		checker = NewScheduleChecker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinancialService{
		students:  students,
		subjects:  subjects,
		schedules: schedules,
		payments:  payments,
		cache:     cache,
		checker:   checker,
		cfg:       cfg,
		maxUnits:  maxUnits,
		logger:    logger,
	}
}

func snapshotCacheKey(studentNumber string) string {
	return "finsnap:" + studentNumber
}

// Snapshot computes the student's financial assessment. Stale reads are
// acceptable; no locks are taken.
func (s *FinancialService) Snapshot(ctx context.Context, studentNumber string) (*models.FinancialSnapshot, error) {
	if s.cache != nil {
		var cached models.FinancialSnapshot
		if err := s.cache.Get(ctx, snapshotCacheKey(studentNumber), &cached); err == nil {
			return &cached, nil
		}
	}

	student, err := s.students.FindByNumber(ctx, studentNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	subjects, err := s.subjects.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enlistments")
	}

	totalUnits := 0
	for i := range subjects {
		totalUnits += subjects[i].CreditUnits
		blocks, err := s.schedules.ListBySection(ctx, subjects[i].SectionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
		}
		subjects[i].Schedule = s.checker.FormatSchedule(blocks)
	}

	tuitionPaid, err := s.payments.SumTuitionByReference(ctx, studentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum payments")
	}
	history, err := s.payments.ListByReference(ctx, studentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment history")
	}

	snapshot := s.assess(studentNumber, totalUnits, tuitionPaid)
	snapshot.EnlistedSubjects = subjects
	snapshot.PaymentHistory = history

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshotCacheKey(studentNumber), snapshot, s.cfg.SnapshotCacheTTL); err != nil {
			s.logger.Warn("failed to cache financial snapshot",
				zap.String("student_number", studentNumber), zap.Error(err))
		}
	}
	return snapshot, nil
}

// assess derives the money fields from unit count and tuition paid. Tuition
// charges at most maxUnits units; fixed fees apply only when the student has
// at least one enlistment.
func (s *FinancialService) assess(studentNumber string, totalUnits int, tuitionPaid float64) *models.FinancialSnapshot {
	unitsCharged := totalUnits
	if s.maxUnits > 0 && unitsCharged > s.maxUnits {
		unitsCharged = s.maxUnits
	}

	tuitionTotal := float64(unitsCharged) * s.cfg.RatePerUnit
	miscFees, otherFees := 0.0, 0.0
	if totalUnits > 0 {
		miscFees = s.cfg.MiscFees
		otherFees = s.cfg.OtherFees
	}
	totalAssessment := tuitionTotal + miscFees + otherFees

	downpaymentStatus := models.InstallmentUnpaid
	if tuitionPaid >= s.cfg.Downpayment {
		downpaymentStatus = models.InstallmentPaid
	}

	return &models.FinancialSnapshot{
		StudentNumber:      studentNumber,
		TotalUnits:         totalUnits,
		UnitsCharged:       unitsCharged,
		TuitionTotal:       tuitionTotal,
		MiscFees:           miscFees,
		OtherFees:          otherFees,
		TotalAssessment:    totalAssessment,
		TotalTuitionPaid:   tuitionPaid,
		OutstandingBalance: totalAssessment - tuitionPaid,
		DownpaymentAmount:  s.cfg.Downpayment,
		DownpaymentStatus:  downpaymentStatus,
		Installments:       s.installments(totalAssessment, tuitionPaid),
	}
}

// installments builds the payment plan: the assessment minus the downpayment
// split evenly across the configured installments. An installment is PAID
// once cumulative tuition payments reach its threshold, within tolerance.
func (s *FinancialService) installments(totalAssessment, tuitionPaid float64) []models.Installment {
	count := s.cfg.InstallmentCount
	if count <= 0 {
		return nil
	}

	remainder := totalAssessment - s.cfg.Downpayment
	amount := 0.0
	if remainder > 0 {
		amount = remainder / float64(count)
	}

	plan := make([]models.Installment, 0, count)
	for i := 1; i <= count; i++ {
		threshold := s.cfg.Downpayment + amount*float64(i)
		status := models.InstallmentUnpaid
		if tuitionPaid >= threshold-s.cfg.PaymentTolerance {
			status = models.InstallmentPaid
		}
		dueDate := ""
		if i-1 < len(s.cfg.InstallmentDates) {
			dueDate = s.cfg.InstallmentDates[i-1]
		}
		plan = append(plan, models.Installment{
			Label:   fmt.Sprintf("%s Installment", ordinal(i)),
			DueDate: dueDate,
			Amount:  amount,
			Status:  status,
		})
	}
	return plan
}

// Invalidate drops the cached snapshot after an enlistment or payment write.
func (s *FinancialService) Invalidate(ctx context.Context, studentNumber string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, snapshotCacheKey(studentNumber)); err != nil {
		s.logger.Warn("failed to invalidate financial snapshot",
			zap.String("student_number", studentNumber), zap.Error(err))
	}
}

func ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
