package models

import "time"

// WaitlistStatus is the lifecycle of a waitlist entry.
type WaitlistStatus string

const (
	WaitlistStatusWaiting   WaitlistStatus = "WAITING"
	WaitlistStatusPromoted  WaitlistStatus = "PROMOTED"
	WaitlistStatusCancelled WaitlistStatus = "CANCELLED"
)

// WaitlistEntry is a queued request to enlist once a section frees up.
// Priority is strictly by PriorityDate, ties broken by WaitlistID.
type WaitlistEntry struct {
	WaitlistID   string         `db:"waitlist_id" json:"waitlist_id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	CourseID     string         `db:"course_id" json:"course_id"`
	Status       WaitlistStatus `db:"status" json:"status"`
	PriorityDate time.Time      `db:"priority_date" json:"priority_date"`
}
