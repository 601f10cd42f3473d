package models

// Class is the frontend shape of a class: camelCase keys, numeric id.
type Class struct {
	ID            int                   `json:"id"`
	Name          string                `json:"name"`
	Students      []StudentRecord       `json:"students"`
	CustomColumns []CustomColumn        `json:"customColumns"`
	Thresholds    *AttendanceThresholds `json:"thresholds,omitempty"`
}

// ClassRecord is the backend shape: snake_case keys, string class_id.
// This is the canonical wire schema the server emits and stores.
type ClassRecord struct {
	ClassID       string                `json:"class_id"`
	TeacherID     string                `json:"teacher_id,omitempty"`
	Name          string                `json:"name"`
	Students      []StudentRecord       `json:"students"`
	CustomColumns []CustomColumn        `json:"custom_columns"`
	Thresholds    *AttendanceThresholds `json:"thresholds"`
	CreatedAt     string                `json:"created_at,omitempty"`
	UpdatedAt     string                `json:"updated_at,omitempty"`
	Statistics    *ClassStatistics      `json:"statistics,omitempty"`
}

// CustomColumn is an extra spreadsheet column a teacher adds to a class.
// Type is one of "text", "number" or "select"; Options only applies to
// select columns.
type CustomColumn struct {
	ID      int64    `json:"id"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

// AttendanceThresholds are the percentage cut-points for attendance
// status buckets. Expected ordering: Excellent >= Good >= Moderate >= AtRisk.
type AttendanceThresholds struct {
	Excellent float64 `json:"excellent"`
	Good      float64 `json:"good"`
	Moderate  float64 `json:"moderate"`
	AtRisk    float64 `json:"atRisk"`
}

// IsZero reports whether no cut-point is set, which is how an empty
// thresholds object ({}) arrives after decoding.
func (t *AttendanceThresholds) IsZero() bool {
	return t == nil || (t.Excellent == 0 && t.Good == 0 && t.Moderate == 0 && t.AtRisk == 0)
}

// DefaultThresholds returns the 90/75/60/50 defaults applied whenever a
// class record arrives without thresholds.
func DefaultThresholds() AttendanceThresholds {
	return AttendanceThresholds{Excellent: 90, Good: 75, Moderate: 60, AtRisk: 50}
}

// ClassStatistics is derived on read, never stored.
type ClassStatistics struct {
	TotalStudents  int     `json:"total_students"`
	AvgAttendance  float64 `json:"avg_attendance"`
	AtRiskCount    int     `json:"at_risk_count"`
	ExcellentCount int     `json:"excellent_count"`
	LastCalculated string  `json:"last_calculated,omitempty"`
}

// StudentStatistics summarises one student's attendance in a class.
type StudentStatistics struct {
	TotalClasses int     `json:"total_classes"`
	Present      int     `json:"present"`
	Absent       int     `json:"absent"`
	Late         int     `json:"late"`
	Percentage   float64 `json:"percentage"`
	Status       string  `json:"status"`
}
