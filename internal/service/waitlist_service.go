package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/enlistment-api/internal/models"
	appErrors "github.com/noah-isme/enlistment-api/pkg/errors"
)

// SystemActor stamps audit rows written without a human behind them, such as
// waitlist promotions.
const SystemActor = "System"

type txRunner interface {
	RepeatableRead(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type waitlistStore interface {
	HasWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) (bool, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, entry *models.WaitlistEntry) error
	ListWaitingTx(ctx context.Context, tx *sqlx.Tx, courseID string) ([]models.WaitlistEntry, error)
	MarkPromotedTx(ctx context.Context, tx *sqlx.Tx, waitlistID string) error
	CancelWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) error
	MarkCancelled(ctx context.Context, waitlistID string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.WaitlistEntry, error)
}

type sectionStore interface {
	FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Section, error)
	EnrolledCountTx(ctx context.Context, tx *sqlx.Tx, sectionID string) (int, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.SectionStanding, error)
}

type enlistmentStore interface {
	ExistsForCourseTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) (bool, error)
	SumUnitsTx(ctx context.Context, tx *sqlx.Tx, studentID string) (int, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, enlistment *models.Enlistment) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type studentLocker interface {
	FindByIDForUpdateTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error)
}

type studentScheduleReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentSchedule, error)
}

type subjectLogWriter interface {
	InsertTx(ctx context.Context, tx *sqlx.Tx, log *models.SubjectLog) error
}

type snapshotInvalidator interface {
	Invalidate(ctx context.Context, studentNumber string)
}

// WaitlistService manages the per-course waitlist: queueing when a section is
// full, promotion after seats free up, and explicit cancellation.
type WaitlistService struct {
	tx          txRunner
	waitlist    waitlistStore
	sections    sectionStore
	enlistments enlistmentStore
	courses     courseReader
	students    studentLocker
	schedules   studentScheduleReader
	sectionSch  sectionScheduleReader
	logs        subjectLogWriter
	snapshots   snapshotInvalidator
	checker     *ScheduleChecker
	metrics     *MetricsService
	maxUnits    int
	logger      *zap.Logger
}

// NewWaitlistService constructs WaitlistService. metrics may be nil.
func NewWaitlistService(
	tx txRunner,
	waitlist waitlistStore,
	sections sectionStore,
	enlistments enlistmentStore,
	courses courseReader,
	students studentLocker,
	schedules studentScheduleReader,
	sectionSch sectionScheduleReader,
	logs subjectLogWriter,
	snapshots snapshotInvalidator,
	checker *ScheduleChecker,
	metrics *MetricsService,
	maxUnits int,
	logger *zap.Logger,
) *WaitlistService {
	if checker == nil {
		checker = NewScheduleChecker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitlistService{
		tx:          tx,
		waitlist:    waitlist,
		sections:    sections,
		enlistments: enlistments,
		courses:     courses,
		students:    students,
		schedules:   schedules,
		sectionSch:  sectionSch,
		logs:        logs,
		snapshots:   snapshots,
		checker:     checker,
		metrics:     metrics,
		maxUnits:    maxUnits,
		logger:      logger,
	}
}

// EnqueueTx appends a WAITING entry for the student and course inside the
// caller's transaction. A second attempt while one is already WAITING is a
// no-op that still reports success.
func (s *WaitlistService) EnqueueTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string, now time.Time) error {
	waiting, err := s.waitlist.HasWaitingTx(ctx, tx, studentID, courseID)
	if err != nil {
		return err
	}
	if waiting {
		return nil
	}
	return s.waitlist.InsertTx(ctx, tx, &models.WaitlistEntry{
		WaitlistID:   uuid.NewString(),
		StudentID:    studentID,
		CourseID:     courseID,
		Status:       models.WaitlistStatusWaiting,
		PriorityDate: now,
	})
}

// CancelWaitingTx withdraws the student's WAITING entry for the course inside
// the caller's transaction, if one exists. A student who just got a seat
// directly must leave the queue, or a later promotion could enlist them into
// a second section of the same course.
func (s *WaitlistService) CancelWaitingTx(ctx context.Context, tx *sqlx.Tx, studentID, courseID string) error {
	return s.waitlist.CancelWaitingTx(ctx, tx, studentID, courseID)
}

// PromoteFromWaitlist seats at most one waiter of the course after a removal
// freed capacity. It takes the first section with a free seat in section-id
// order, then walks the WAITING queue in priority order, skipping waiters the
// seat would push over the unit cap or into a schedule conflict. Skipped
// waiters stay WAITING. With no free section or no compatible waiter this is
// a no-op.
func (s *WaitlistService) PromoteFromWaitlist(ctx context.Context, courseID string) error {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course for promotion")
	}

	standings, err := s.sections.ListByCourse(ctx, courseID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections for promotion")
	}

	return s.tx.RepeatableRead(ctx, func(tx *sqlx.Tx) error {
		var target *models.Section
		for _, st := range standings {
			section, err := s.sections.FindByIDForUpdateTx(ctx, tx, st.SectionID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return err
			}
			// Recount under the lock; the unlocked standing may be stale.
			enrolled, err := s.sections.EnrolledCountTx(ctx, tx, section.SectionID)
			if err != nil {
				return err
			}
			if enrolled < section.MaxCapacity {
				target = section
				break
			}
		}
		if target == nil {
			return nil
		}

		waiters, err := s.waitlist.ListWaitingTx(ctx, tx, courseID)
		if err != nil {
			return err
		}

		blocks, err := s.sectionSch.ListBySection(ctx, target.SectionID)
		if err != nil {
			return err
		}

		for _, waiter := range waiters {
			student, err := s.students.FindByIDForUpdateTx(ctx, tx, waiter.StudentID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return err
			}

			enlisted, err := s.enlistments.ExistsForCourseTx(ctx, tx, waiter.StudentID, courseID)
			if err != nil {
				return err
			}
			if enlisted {
				continue
			}

			units, err := s.enlistments.SumUnitsTx(ctx, tx, waiter.StudentID)
			if err != nil {
				return err
			}
			if units+course.CreditUnits > s.maxUnits {
				continue
			}

			existing, err := s.schedules.ListByStudent(ctx, waiter.StudentID)
			if err != nil {
				return err
			}
			if s.checker.FindConflict(blocks, existing) != nil {
				continue
			}

			if err := s.enlistments.InsertTx(ctx, tx, &models.Enlistment{
				EnlistmentID: uuid.NewString(),
				StudentID:    waiter.StudentID,
				CourseID:     courseID,
				SectionID:    target.SectionID,
			}); err != nil {
				return err
			}
			if err := s.waitlist.MarkPromotedTx(ctx, tx, waiter.WaitlistID); err != nil {
				return err
			}
			if err := s.logs.InsertTx(ctx, tx, &models.SubjectLog{
				ID:            uuid.NewString(),
				StudentNumber: student.StudentNumber,
				Action:        models.SubjectLogAdded,
				CourseCode:    course.CourseCode,
				CourseTitle:   course.CourseTitle,
				Timestamp:     time.Now().UTC(),
				PerformedBy:   SystemActor,
			}); err != nil {
				return err
			}

			if s.snapshots != nil {
				s.snapshots.Invalidate(ctx, student.StudentNumber)
			}
			if s.metrics != nil {
				s.metrics.RecordPromotion()
			}
			s.logger.Info("promoted waiter into section",
				zap.String("waitlist_id", waiter.WaitlistID),
				zap.String("student_number", student.StudentNumber),
				zap.String("section_id", target.SectionID))
			return nil
		}
		return nil
	})
}

// Cancel withdraws a WAITING entry.
func (s *WaitlistService) Cancel(ctx context.Context, waitlistID string) error {
	cancelled, err := s.waitlist.MarkCancelled(ctx, waitlistID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel waitlist entry")
	}
	if cancelled {
		return nil
	}

	if _, err := s.waitlist.FindByID(ctx, waitlistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "waitlist entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load waitlist entry")
	}
	return appErrors.Clone(appErrors.ErrConstraintViolation, "waitlist entry is no longer waiting")
}
