package models

// Enlistment is a student's committed seat in one section of one course.
type Enlistment struct {
	EnlistmentID string `db:"enlistment_id" json:"enlistment_id"`
	StudentID    string `db:"student_id" json:"student_id"`
	CourseID     string `db:"course_id" json:"course_id"`
	SectionID    string `db:"section_id" json:"section_id"`
}

// EnlistedSubject is the assessment view of one enlistment.
type EnlistedSubject struct {
	EnlistmentID string `db:"enlistment_id" json:"enlistment_id"`
	SectionID    string `db:"section_id" json:"-"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseTitle  string `db:"course_title" json:"course_title"`
	CreditUnits  int    `db:"credit_units" json:"credit_units"`
	Schedule     string `json:"schedule"`
}

// EnlistmentRemoval carries the course identity needed to audit a removal.
type EnlistmentRemoval struct {
	EnlistmentID string `db:"enlistment_id"`
	StudentID    string `db:"student_id"`
	CourseID     string `db:"course_id"`
	CourseCode   string `db:"course_code"`
	CourseTitle  string `db:"course_title"`
}
