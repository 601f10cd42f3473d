package controllers

import (
	"testing"

	"attendsheets/models"

	"github.com/stretchr/testify/require"
)

func TestMarkAbsentees(t *testing.T) {
	const date = "2026-01-05"
	students := []models.StudentRecord{
		{ID: 1, Name: "Scanned", Attendance: map[string]models.AttendanceMark{date: models.MarkPresent}},
		{ID: 2, Name: "NoShow"},
		{ID: 3, Name: "Dropped"},
		{ID: 4, Name: "ExcusedLate", Attendance: map[string]models.AttendanceMark{date: models.MarkLate}},
	}
	active := map[int64]bool{1: true, 2: true, 4: true}

	marked := markAbsentees(students, active, []int64{1}, date)
	require.Equal(t, 1, marked)

	// The scanner keeps their P.
	require.Equal(t, models.MarkPresent, students[0].Attendance[date])
	// The enrolled no-show gets an A.
	require.Equal(t, models.MarkAbsent, students[1].Attendance[date])
	// Inactive enrollment: untouched, no mark at all.
	_, ok := students[2].Attendance[date]
	require.False(t, ok)
	// An existing mark is never overwritten.
	require.Equal(t, models.MarkLate, students[3].Attendance[date])
}

func TestMarkAbsenteesAllScanned(t *testing.T) {
	students := []models.StudentRecord{{ID: 1}, {ID: 2}}
	active := map[int64]bool{1: true, 2: true}

	marked := markAbsentees(students, active, []int64{1, 2}, "2026-01-05")
	require.Zero(t, marked)
	require.Empty(t, students[0].Attendance)
	require.Empty(t, students[1].Attendance)
}
