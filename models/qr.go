package models

const (
	QRSessionActive  = "active"
	QRSessionStopped = "stopped"
)

// QRSession is a live QR attendance round for one class. The code rotates
// every RotationInterval seconds; students scanning the current code are
// marked present, everyone else is marked absent when the session stops.
type QRSession struct {
	ClassID          string  `json:"class_id"`
	TeacherID        string  `json:"teacher_id"`
	AttendanceDate   string  `json:"attendance_date"`
	RotationInterval int     `json:"rotation_interval"`
	CurrentCode      string  `json:"current_code"`
	CodeGeneratedAt  string  `json:"code_generated_at"`
	ScannedStudents  []int64 `json:"scanned_students"`
	Status           string  `json:"status"`
	StartedAt        string  `json:"started_at"`
	StoppedAt        string  `json:"stopped_at,omitempty"`
}
