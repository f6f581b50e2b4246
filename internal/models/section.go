package models

// Section is one class offering of a course.
type Section struct {
	SectionID   string `db:"section_id" json:"section_id"`
	CourseID    string `db:"course_id" json:"course_id"`
	SectionCode string `db:"section_code" json:"section_code"`
	MaxCapacity int    `db:"max_capacity" json:"max_capacity"`
}

// SectionStanding pairs a section with its enrolled head count.
type SectionStanding struct {
	Section
	EnrolledCount int `db:"enrolled_count" json:"enrolled_count"`
}
