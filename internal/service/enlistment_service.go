package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

// EnlistOutcome is the soft result of an enlist attempt.
type EnlistOutcome string

const (
	EnlistOutcomeAdded      EnlistOutcome = "ADDED"
	EnlistOutcomeWaitlisted EnlistOutcome = "WAITLISTED"
	// EnlistOutcomeNeedsConfirmation asks the caller to retry with
	// ConfirmWaitlist set. No state was changed.
	EnlistOutcomeNeedsConfirmation EnlistOutcome = "NEEDS_WAITLIST_CONFIRMATION"
)

// EnlistSubjectRequest describes an enlist attempt.
type EnlistSubjectRequest struct {
	StudentID       string `json:"student_id" validate:"required"`
	SectionID       string `json:"section_id" validate:"required"`
	ConfirmWaitlist bool   `json:"confirm_waitlist"`
}

// EnlistResult reports what happened to an enlist attempt.
type EnlistResult struct {
	Outcome     EnlistOutcome `json:"outcome"`
	CourseCode  string        `json:"course_code"`
	CourseTitle string        `json:"course_title"`
}

// RemoveSubjectsRequest describes a bulk removal.
type RemoveSubjectsRequest struct {
	StudentNumber string   `json:"student_number" validate:"required"`
	EnlistmentIDs []string `json:"enlistment_ids"`
}

// RemoveResult reports how many enlistments a bulk removal deleted.
type RemoveResult struct {
	RemovedCount   int      `json:"removed_count"`
	FreedCourseIDs []string `json:"-"`
}

// WalkInPaymentRequest describes an over-the-counter payment.
type WalkInPaymentRequest struct {
	StudentIdentifier string  `json:"student_identifier" validate:"required"`
	Amount            float64 `json:"amount" validate:"required,gt=0"`
	PaymentType       string  `json:"payment_type" validate:"required"`
	Remarks           *string `json:"remarks"`
}

// WalkInPaymentResult reports the recorded transaction and the student's
// status after reconciliation.
type WalkInPaymentResult struct {
	TransactionID string                 `json:"transaction_id"`
	StudentNumber string                 `json:"student_number"`
	NewStatus     models.ApplicantStatus `json:"new_status"`
}

type coordinatorStudentStore interface {
	FindByNumber(ctx context.Context, studentNumber string) (*models.Student, error)
	Search(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error)
	UpdateApplicantStatusTx(ctx context.Context, tx *sqlx.Tx, id string, status models.ApplicantStatus) error
}

type coordinatorEnlistmentStore interface {
	enlistmentStore
	FindForRemovalTx(ctx context.Context, tx *sqlx.Tx, enlistmentID, studentID string) (*models.EnlistmentRemoval, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, enlistmentID string) error
}

type paymentLedger interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, payment *models.Payment) error
	SumTuitionByReferenceTx(ctx context.Context, tx *sqlx.Tx, referenceNumber string) (float64, error)
}

type waitlister interface {
	EnqueueTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string, now time.Time) error
	CancelWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) error
	PromoteFromWaitlist(ctx context.Context, courseID string) error
}

// EnlistmentService coordinates the transactional enrollment flows: enlist,
// bulk remove, and walk-in payment. Each flow runs in one repeatable-read
// transaction holding locks on the student row and, for enlist, the section
// row; waitlist promotion after a removal runs in its own transaction so the
// removal stays durable even when promotion fails.
type EnlistmentService struct {
	tx          txRunner
	students    coordinatorStudentStore
	sections    sectionStore
	courses     courseReader
	enlistments coordinatorEnlistmentStore
	schedules   studentScheduleReader
	sectionSch  sectionScheduleReader
	payments    paymentLedger
	waitlist    waitlister
	logs        subjectLogWriter
	snapshots   snapshotInvalidator
	checker     *ScheduleChecker
	maxUnits    int
	downpayment float64
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnlistmentService constructs EnlistmentService. downpayment is the
// tuition threshold that flips a student between PENDING and ENROLLED.
func NewEnlistmentService(
	tx txRunner,
	students coordinatorStudentStore,
	sections sectionStore,
	courses courseReader,
	enlistments coordinatorEnlistmentStore,
	schedules studentScheduleReader,
	sectionSch sectionScheduleReader,
	payments paymentLedger,
	waitlist waitlister,
	logs subjectLogWriter,
	snapshots snapshotInvalidator,
	checker *ScheduleChecker,
	maxUnits int,
	downpayment float64,
	validate *validator.Validate,
	logger *zap.Logger,
) *EnlistmentService {
	if checker == nil {
		checker = NewScheduleChecker()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnlistmentService{
		tx:          tx,
		students:    students,
		sections:    sections,
		courses:     courses,
		enlistments: enlistments,
		schedules:   schedules,
		sectionSch:  sectionSch,
		payments:    payments,
		waitlist:    waitlist,
		logs:        logs,
		snapshots:   snapshots,
		checker:     checker,
		maxUnits:    maxUnits,
		downpayment: downpayment,
		validator:   validate,
		logger:      logger,
	}
}

// EnlistSubject adds a student to a section, or waitlists them when it is
// full. The duplicate, unit-cap, capacity and conflict checks all run under
// the student and section row locks, so two admins racing for the last seat
// cannot both win.
func (s *EnlistmentService) EnlistSubject(ctx context.Context, actor string, req EnlistSubjectRequest) (*EnlistResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enlistment payload")
	}

	var result *EnlistResult
	var studentNumber string

	err := s.tx.RepeatableRead(ctx, func(tx *sqlx.Tx) error {
		student, err := s.students.FindByIDForUpdateTx(ctx, tx, req.StudentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrStudentNotFound, "")
			}
			return err
		}
		if student.ApplicantStatus == models.ApplicantStatusEnrolled {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}
		studentNumber = student.StudentNumber

		section, err := s.sections.FindByIDForUpdateTx(ctx, tx, req.SectionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrSectionNotFound, "")
			}
			return err
		}

		course, err := s.courses.FindByID(ctx, section.CourseID)
		if err != nil {
			return err
		}

		duplicate, err := s.enlistments.ExistsForCourseTx(ctx, tx, student.ID, course.CourseID)
		if err != nil {
			return err
		}
		if duplicate {
			return appErrors.Clone(appErrors.ErrDuplicateCourse, "")
		}

		currentUnits, err := s.enlistments.SumUnitsTx(ctx, tx, student.ID)
		if err != nil {
			return err
		}
		if currentUnits+course.CreditUnits > s.maxUnits {
			return appErrors.Clone(appErrors.ErrUnitCapExceeded,
				fmt.Sprintf("Maximum limit of %d units reached. Current: %d units.", s.maxUnits, currentUnits))
		}

		enrolled, err := s.sections.EnrolledCountTx(ctx, tx, section.SectionID)
		if err != nil {
			return err
		}
		if enrolled >= section.MaxCapacity {
			if !req.ConfirmWaitlist {
				result = &EnlistResult{
					Outcome:     EnlistOutcomeNeedsConfirmation,
					CourseCode:  course.CourseCode,
					CourseTitle: course.CourseTitle,
				}
				return nil
			}
			if err := s.waitlist.EnqueueTx(ctx, tx, student.ID, course.CourseID, time.Now().UTC()); err != nil {
				return err
			}
			result = &EnlistResult{
				Outcome:     EnlistOutcomeWaitlisted,
				CourseCode:  course.CourseCode,
				CourseTitle: course.CourseTitle,
			}
			return nil
		}

		candidate, err := s.sectionSch.ListBySection(ctx, section.SectionID)
		if err != nil {
			return err
		}
		existing, err := s.schedules.ListByStudent(ctx, student.ID)
		if err != nil {
			return err
		}
		if conflict := s.checker.FindConflict(candidate, existing); conflict != nil {
			return appErrors.Clone(appErrors.ErrScheduleConflict, conflict.Message())
		}

		if err := s.enlistments.InsertTx(ctx, tx, &models.Enlistment{
			EnlistmentID: uuid.NewString(),
			StudentID:    student.ID,
			CourseID:     course.CourseID,
			SectionID:    section.SectionID,
		}); err != nil {
			return err
		}
		// A direct seat supersedes any queue spot for the same course.
		if err := s.waitlist.CancelWaitingTx(ctx, tx, student.ID, course.CourseID); err != nil {
			return err
		}
		if err := s.logs.InsertTx(ctx, tx, &models.SubjectLog{
			ID:            uuid.NewString(),
			StudentNumber: student.StudentNumber,
			Action:        models.SubjectLogAdded,
			CourseCode:    course.CourseCode,
			CourseTitle:   course.CourseTitle,
			Timestamp:     time.Now().UTC(),
			PerformedBy:   actor,
		}); err != nil {
			return err
		}

		result = &EnlistResult{
			Outcome:     EnlistOutcomeAdded,
			CourseCode:  course.CourseCode,
			CourseTitle: course.CourseTitle,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil && result.Outcome == EnlistOutcomeAdded {
		s.snapshots.Invalidate(ctx, studentNumber)
	}
	return result, nil
}

// RemoveSubjectsBulk deletes the given enlistments of the student. Ids that
// do not exist or belong to another student are skipped silently. After the
// deletions commit, promotion runs once per freed course in separate
// transactions; promotion failures are logged and do not affect the result.
func (s *EnlistmentService) RemoveSubjectsBulk(ctx context.Context, actor string, req RemoveSubjectsRequest) (*RemoveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid removal payload")
	}

	student, err := s.students.FindByNumber(ctx, req.StudentNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.ApplicantStatus == models.ApplicantStatusEnrolled {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	}
	if len(req.EnlistmentIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNothingSelected, "")
	}

	result := &RemoveResult{}
	err = s.tx.RepeatableRead(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.students.FindByIDForUpdateTx(ctx, tx, student.ID)
		if err != nil {
			return err
		}
		if locked.ApplicantStatus == models.ApplicantStatusEnrolled {
			return appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
		}

		for _, id := range req.EnlistmentIDs {
			removal, err := s.enlistments.FindForRemovalTx(ctx, tx, id, student.ID)
			if err != nil {
				return err
			}
			if removal == nil {
				continue
			}
			if err := s.logs.InsertTx(ctx, tx, &models.SubjectLog{
				ID:            uuid.NewString(),
				StudentNumber: student.StudentNumber,
				Action:        models.SubjectLogRemoved,
				CourseCode:    removal.CourseCode,
				CourseTitle:   removal.CourseTitle,
				Timestamp:     time.Now().UTC(),
				PerformedBy:   actor,
			}); err != nil {
				return err
			}
			if err := s.enlistments.DeleteTx(ctx, tx, removal.EnlistmentID); err != nil {
				return err
			}
			result.RemovedCount++
			result.FreedCourseIDs = append(result.FreedCourseIDs, removal.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil && result.RemovedCount > 0 {
		s.snapshots.Invalidate(ctx, student.StudentNumber)
	}

	for _, courseID := range dedupe(result.FreedCourseIDs) {
		if err := s.waitlist.PromoteFromWaitlist(ctx, courseID); err != nil {
			s.logger.Error("waitlist promotion failed after removal",
				zap.String("course_id", courseID), zap.Error(err))
		}
	}
	return result, nil
}

// RecordWalkInPayment appends an over-the-counter payment and reconciles the
// student's applicant status against the downpayment threshold in both
// directions.
func (s *EnlistmentService) RecordWalkInPayment(ctx context.Context, actor string, req WalkInPaymentRequest) (*WalkInPaymentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	student, err := s.resolveStudent(ctx, req.StudentIdentifier)
	if err != nil {
		return nil, err
	}

	result := &WalkInPaymentResult{StudentNumber: student.StudentNumber}
	err = s.tx.RepeatableRead(ctx, func(tx *sqlx.Tx) error {
		locked, err := s.students.FindByIDForUpdateTx(ctx, tx, student.ID)
		if err != nil {
			return err
		}

		payment := &models.Payment{
			TransactionID:   newWalkInTransactionID(),
			ReferenceNumber: locked.StudentNumber,
			Amount:          req.Amount,
			PaymentMethod:   req.PaymentType + " (Over the Counter)",
			Remarks:         req.Remarks,
			PaymentDate:     time.Now().UTC(),
			Status:          models.PaymentStatusCompleted,
		}
		if err := s.payments.InsertTx(ctx, tx, payment); err != nil {
			return err
		}
		result.TransactionID = payment.TransactionID

		tuitionPaid, err := s.payments.SumTuitionByReferenceTx(ctx, tx, locked.StudentNumber)
		if err != nil {
			return err
		}

		newStatus := models.ApplicantStatusPending
		if tuitionPaid >= s.downpayment {
			newStatus = models.ApplicantStatusEnrolled
		}
		if newStatus != locked.ApplicantStatus {
			if err := s.students.UpdateApplicantStatusTx(ctx, tx, locked.ID, newStatus); err != nil {
				return err
			}
		}
		result.NewStatus = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.snapshots != nil {
		s.snapshots.Invalidate(ctx, student.StudentNumber)
	}
	s.logger.Info("recorded walk-in payment",
		zap.String("transaction_id", result.TransactionID),
		zap.String("student_number", student.StudentNumber),
		zap.String("actor", actor),
		zap.Float64("amount", req.Amount))
	return result, nil
}

// resolveStudent matches an exact student number first, then falls back to a
// case-insensitive last-name substring search taking the first match by
// student number.
func (s *EnlistmentService) resolveStudent(ctx context.Context, identifier string) (*models.Student, error) {
	student, err := s.students.FindByNumber(ctx, identifier)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	matches, _, err := s.students.Search(ctx, models.StudentFilter{Search: identifier, Page: 1, PageSize: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search students")
	}
	if len(matches) == 0 {
		return nil, appErrors.Clone(appErrors.ErrStudentNotFound, "")
	}
	return &matches[0], nil
}

// newWalkInTransactionID builds "WLK-" plus 8 upper-case hex characters from
// a random 32-bit value.
func newWalkInTransactionID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Fallback keeps ids unique enough for a single cashier session.
		binary.BigEndian.PutUint32(buf[:], uint32(time.Now().UnixNano()))
	}
	return fmt.Sprintf("WLK-%08X", binary.BigEndian.Uint32(buf[:]))
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
