package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStudentRecordKeepsUnknownFields(t *testing.T) {
	raw := `{"id": 1700000000000, "rollNo": "A-17", "name": "Dana",
		"attendance": {"2026-01-05": "P"},
		"notes": "front row", "col_42": 8.5}`

	var record StudentRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))
	require.Equal(t, int64(1700000000000), record.ID)
	require.Equal(t, "A-17", record.RollNo)
	require.Equal(t, MarkPresent, record.Attendance["2026-01-05"])
	require.Equal(t, "front row", record.Extra["notes"])
	require.Equal(t, 8.5, record.Extra["col_42"])

	out, err := json.Marshal(record)
	require.NoError(t, err)

	var echoed map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &echoed))
	require.Equal(t, "front row", echoed["notes"])
	require.Equal(t, 8.5, echoed["col_42"])
	require.Equal(t, "Dana", echoed["name"])
}

func TestStudentRecordIDCoercion(t *testing.T) {
	var record StudentRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": "42", "name": "S"}`), &record))
	require.Equal(t, int64(42), record.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": 42.0, "name": "S"}`), &record))
	require.Equal(t, int64(42), record.ID)
}

func TestStudentRecordMarshalDefaults(t *testing.T) {
	out, err := json.Marshal(StudentRecord{ID: 1, Name: "S"})
	require.NoError(t, err)

	var echoed map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &echoed))
	require.NotContains(t, echoed, "email")
	require.Equal(t, map[string]interface{}{}, echoed["attendance"])
}
