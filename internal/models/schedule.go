package models

// ClassSchedule is a weekly meeting block of a section. DayOfWeek runs 1..7
// for Monday..Sunday; times are clock strings ("HH:MM:SS") as stored in the
// database's TIME columns.
type ClassSchedule struct {
	SectionID string `db:"section_id" json:"section_id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
}

// StudentSchedule is a schedule block of a section the student is enlisted
// in, joined with the course title for conflict messages.
type StudentSchedule struct {
	ClassSchedule
	CourseTitle string `db:"course_title" json:"course_title"`
}
