package models

import "time"

// SubjectLogAction distinguishes additions from removals in the audit trail.
type SubjectLogAction string

const (
	SubjectLogAdded   SubjectLogAction = "ADDED"
	SubjectLogRemoved SubjectLogAction = "REMOVED"
)

// SubjectLog records one enlistment change. Exactly one row is written per
// added or removed enlistment, in the same transaction as the change.
type SubjectLog struct {
	ID            string           `db:"id" json:"id"`
	StudentNumber string           `db:"student_number" json:"student_number"`
	Action        SubjectLogAction `db:"action" json:"action"`
	CourseCode    string           `db:"course_code" json:"course_code"`
	CourseTitle   string           `db:"course_title" json:"course_title"`
	Timestamp     time.Time        `db:"timestamp" json:"timestamp"`
	PerformedBy   string           `db:"performed_by" json:"performed_by"`
}
