package controllers

import (
	"testing"

	"attendsheets/models"

	"github.com/stretchr/testify/require"
)

func TestRestoreStudentRecordKeepsAttendance(t *testing.T) {
	students := []models.StudentRecord{
		{ID: 100, Name: "Old Name", RollNo: "A-1", Attendance: map[string]models.AttendanceMark{
			"2026-01-05": models.MarkPresent,
			"2026-01-06": models.MarkAbsent,
			"2026-01-07": models.MarkLate,
		}},
		{ID: 200, Name: "Other"},
	}

	restored, count := restoreStudentRecord(students, 100, "New Name", "B-2", "new@example.com")
	require.Equal(t, 3, count)
	require.Len(t, restored, 2)

	// Same row, attendance intact, identity refreshed.
	require.Equal(t, int64(100), restored[0].ID)
	require.Equal(t, "New Name", restored[0].Name)
	require.Equal(t, "B-2", restored[0].RollNo)
	require.Equal(t, models.MarkPresent, restored[0].Attendance["2026-01-05"])
	require.Len(t, restored[0].Attendance, 3)
}

func TestRestoreStudentRecordRecreatesMissingRow(t *testing.T) {
	students := []models.StudentRecord{{ID: 200, Name: "Other"}}

	restored, count := restoreStudentRecord(students, 100, "Dana", "A-1", "dana@example.com")
	require.Zero(t, count)
	require.Len(t, restored, 2)
	require.Equal(t, int64(100), restored[1].ID)
	require.Equal(t, "Dana", restored[1].Name)
	require.NotNil(t, restored[1].Attendance)
	require.Empty(t, restored[1].Attendance)
}
