package controllers

import (
	"testing"

	"attendsheets/models"

	"github.com/stretchr/testify/require"
)

func TestMergeStudentsKeepsRemovedRecords(t *testing.T) {
	current := []models.StudentRecord{
		{ID: 1, Name: "Ada", Attendance: map[string]models.AttendanceMark{"2026-01-05": models.MarkPresent}},
		{ID: 2, Name: "Bo"},
	}
	incoming := []models.StudentRecord{
		{ID: 1, Name: "Ada Updated"},
	}

	final, removed := mergeStudents(current, incoming)
	require.Equal(t, []int64{2}, removed)
	require.Len(t, final, 2)
	require.Equal(t, "Ada Updated", final[0].Name)
	// The removed student's row survives so re-enrollment can restore it.
	require.Equal(t, "Bo", final[1].Name)
}

func TestMergeStudentsAppendsNew(t *testing.T) {
	current := []models.StudentRecord{{ID: 1, Name: "Ada"}}
	incoming := []models.StudentRecord{
		{ID: 1, Name: "Ada"},
		{ID: 3, Name: "Cy"},
	}

	final, removed := mergeStudents(current, incoming)
	require.Empty(t, removed)
	require.Len(t, final, 2)
	require.Equal(t, int64(3), final[1].ID)
}

func TestMergeStudentsEmptyIncoming(t *testing.T) {
	current := []models.StudentRecord{{ID: 1}, {ID: 2}}

	final, removed := mergeStudents(current, []models.StudentRecord{})
	require.Equal(t, []int64{1, 2}, removed)
	require.Len(t, final, 2)
}
