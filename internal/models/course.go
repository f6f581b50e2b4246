package models

// Course is a subject offered for the term.
type Course struct {
	CourseID     string `db:"course_id" json:"course_id"`
	CourseCode   string `db:"course_code" json:"course_code"`
	CourseTitle  string `db:"course_title" json:"course_title"`
	CreditUnits  int    `db:"credit_units" json:"credit_units"`
	ActiveStatus bool   `db:"active_status" json:"active_status"`
}

// CourseSectionView is one row of the cashier's course picker: a section of an
// active course with its current load and display schedule.
type CourseSectionView struct {
	CourseID      string `db:"course_id" json:"course_id"`
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseTitle   string `db:"course_title" json:"course_title"`
	CreditUnits   int    `db:"credit_units" json:"credit_units"`
	SectionID     string `db:"section_id" json:"section_id"`
	SectionCode   string `db:"section_code" json:"section_code"`
	MaxCapacity   int    `db:"max_capacity" json:"max_capacity"`
	EnrolledCount int    `db:"enrolled_count" json:"enrolled_count"`
	Schedule      string `json:"schedule"`
}
