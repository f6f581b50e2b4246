package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/noah-isme/enlistment-api/internal/models"
)

var dayNames = [8]string{"", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
var dayAbbrevs = [8]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ScheduleConflict names the existing course and day that block a candidate
// section.
type ScheduleConflict struct {
	CourseTitle string
	DayName     string
}

// Message renders the conflict for the enlistment error.
func (c *ScheduleConflict) Message() string {
	return fmt.Sprintf("schedule conflict with %s on %s", c.CourseTitle, c.DayName)
}

// ScheduleChecker detects weekly time overlaps between a candidate section
// and a student's current enlistments. It is pure and performs no I/O.
type ScheduleChecker struct{}

// NewScheduleChecker constructs a ScheduleChecker.
func NewScheduleChecker() *ScheduleChecker {
	return &ScheduleChecker{}
}

// FindConflict returns the first overlap between the candidate blocks and the
// student's existing blocks, or nil when they are compatible. Two blocks
// overlap when they share a day and one starts strictly before the other
// ends; back-to-back blocks with equal endpoints do not conflict. Either side
// being empty means no conflict.
func (c *ScheduleChecker) FindConflict(candidate []models.ClassSchedule, existing []models.StudentSchedule) *ScheduleConflict {
	if len(candidate) == 0 || len(existing) == 0 {
		return nil
	}

	for _, next := range candidate {
		nextStart, okStart := parseClock(next.StartTime)
		nextEnd, okEnd := parseClock(next.EndTime)
		if !okStart || !okEnd {
			continue
		}
		for _, cur := range existing {
			if cur.DayOfWeek != next.DayOfWeek {
				continue
			}
			curStart, okStart := parseClock(cur.StartTime)
			curEnd, okEnd := parseClock(cur.EndTime)
			if !okStart || !okEnd {
				continue
			}
			if nextStart < curEnd && nextEnd > curStart {
				return &ScheduleConflict{
					CourseTitle: cur.CourseTitle,
					DayName:     dayName(cur.DayOfWeek),
				}
			}
		}
	}
	return nil
}

// FormatSchedule renders a section's weekly blocks for display, e.g.
// "Mon 9:00 AM-10:30 AM, Wed 9:00 AM-10:30 AM". A section with no blocks
// renders as "TBA".
func (c *ScheduleChecker) FormatSchedule(blocks []models.ClassSchedule) string {
	if len(blocks) == 0 {
		return "TBA"
	}

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		start, okStart := parseClock(b.StartTime)
		end, okEnd := parseClock(b.EndTime)
		if !okStart || !okEnd {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s-%s", dayAbbrev(b.DayOfWeek), formatClock(start), formatClock(end)))
	}
	if len(parts) == 0 {
		return "TBA"
	}
	return strings.Join(parts, ", ")
}

// parseClock converts a "HH:MM" or "HH:MM:SS" clock string into minutes from
// midnight. Comparison is at minute precision; seconds are discarded.
func parseClock(clock string) (int, bool) {
	fields := strings.Split(strings.TrimSpace(clock), ":")
	if len(fields) < 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(fields[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(fields[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// formatClock renders minutes from midnight as "h:mm AM/PM".
func formatClock(minutes int) string {
	hour := minutes / 60
	minute := minutes % 60
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minute, meridiem)
}

func dayName(day int) string {
	if day < 1 || day > 7 {
		return "Unknown"
	}
	return dayNames[day]
}

func dayAbbrev(day int) string {
	if day < 1 || day > 7 {
		return "???"
	}
	return dayAbbrevs[day]
}
