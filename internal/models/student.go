package models

import "time"

// ApplicantStatus tracks where a student stands in the enrollment pipeline.
// Values are stored canonical upper-case and compared exactly.
type ApplicantStatus string

const (
	ApplicantStatusPending  ApplicantStatus = "PENDING"
	ApplicantStatusEnrolled ApplicantStatus = "ENROLLED"
)

// Student represents an applicant or enrollee for the current term.
type Student struct {
	ID              string          `db:"id" json:"id"`
	StudentNumber   string          `db:"student_number" json:"student_number"`
	FirstName       string          `db:"first_name" json:"first_name"`
	LastName        string          `db:"last_name" json:"last_name"`
	ApplicantStatus ApplicantStatus `db:"applicant_status" json:"applicant_status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures the admin search parameters.
type StudentFilter struct {
	Search   string
	Page     int
	PageSize int
}
