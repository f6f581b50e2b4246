package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/enlistment-api/internal/models"
)

func block(day int, start, end string) models.ClassSchedule {
	return models.ClassSchedule{SectionID: "sec-1", DayOfWeek: day, StartTime: start, EndTime: end}
}

func existingBlock(title string, day int, start, end string) models.StudentSchedule {
	return models.StudentSchedule{
		ClassSchedule: models.ClassSchedule{SectionID: "sec-0", DayOfWeek: day, StartTime: start, EndTime: end},
		CourseTitle:   title,
	}
}

func TestFindConflictOverlapSameDay(t *testing.T) {
	checker := NewScheduleChecker()

	conflict := checker.FindConflict(
		[]models.ClassSchedule{block(1, "10:00:00", "11:30:00")},
		[]models.StudentSchedule{existingBlock("Calculus I", 1, "09:00:00", "10:30:00")},
	)
	require.NotNil(t, conflict)
	assert.Equal(t, "Calculus I", conflict.CourseTitle)
	assert.Equal(t, "Monday", conflict.DayName)
}

func TestFindConflictBackToBackAllowed(t *testing.T) {
	checker := NewScheduleChecker()

	conflict := checker.FindConflict(
		[]models.ClassSchedule{block(1, "10:30:00", "12:00:00")},
		[]models.StudentSchedule{existingBlock("Calculus I", 1, "09:00:00", "10:30:00")},
	)
	assert.Nil(t, conflict)
}

func TestFindConflictDifferentDays(t *testing.T) {
	checker := NewScheduleChecker()

	conflict := checker.FindConflict(
		[]models.ClassSchedule{block(2, "09:00:00", "10:30:00")},
		[]models.StudentSchedule{existingBlock("Calculus I", 1, "09:00:00", "10:30:00")},
	)
	assert.Nil(t, conflict)
}

func TestFindConflictEmptySides(t *testing.T) {
	checker := NewScheduleChecker()

	assert.Nil(t, checker.FindConflict(nil, []models.StudentSchedule{existingBlock("A", 1, "09:00:00", "10:00:00")}))
	assert.Nil(t, checker.FindConflict([]models.ClassSchedule{block(1, "09:00:00", "10:00:00")}, nil))
}

func TestFindConflictSymmetric(t *testing.T) {
	checker := NewScheduleChecker()

	a := block(3, "13:00:00", "14:30:00")
	b := existingBlock("Physics", 3, "14:00:00", "15:30:00")
	require.NotNil(t, checker.FindConflict([]models.ClassSchedule{a}, []models.StudentSchedule{b}))

	// Swap sides.
	aExisting := existingBlock("Chemistry", 3, "13:00:00", "14:30:00")
	bCandidate := block(3, "14:00:00", "15:30:00")
	require.NotNil(t, checker.FindConflict([]models.ClassSchedule{bCandidate}, []models.StudentSchedule{aExisting}))
}

func TestFormatSchedule(t *testing.T) {
	checker := NewScheduleChecker()

	out := checker.FormatSchedule([]models.ClassSchedule{
		block(1, "09:00:00", "10:30:00"),
		block(3, "13:00:00", "14:30:00"),
	})
	assert.Equal(t, "Mon 9:00 AM-10:30 AM, Wed 1:00 PM-2:30 PM", out)
}

func TestFormatScheduleTBA(t *testing.T) {
	checker := NewScheduleChecker()
	assert.Equal(t, "TBA", checker.FormatSchedule(nil))
}

func TestFormatScheduleNoonAndMidnight(t *testing.T) {
	checker := NewScheduleChecker()

	out := checker.FormatSchedule([]models.ClassSchedule{block(6, "12:00:00", "13:00:00")})
	assert.Equal(t, "Sat 12:00 PM-1:00 PM", out)

	out = checker.FormatSchedule([]models.ClassSchedule{block(7, "00:00:00", "01:00:00")})
	assert.Equal(t, "Sun 12:00 AM-1:00 AM", out)
}

func TestParseClockRejectsGarbage(t *testing.T) {
	_, ok := parseClock("not a time")
	assert.False(t, ok)
	_, ok = parseClock("25:00")
	assert.False(t, ok)
	_, ok = parseClock("10:75")
	assert.False(t, ok)

	minutes, ok := parseClock("10:30")
	require.True(t, ok)
	assert.Equal(t, 630, minutes)
}
