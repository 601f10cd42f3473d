package models

const (
	EnrollmentActive   = "active"
	EnrollmentInactive = "inactive"
)

// Enrollment links a student account to a class. Unenrolling flips the
// status to inactive instead of deleting the row, so a later re-enrollment
// can restore the student's sheet record with its attendance intact.
type Enrollment struct {
	ClassID         string `json:"class_id"`
	StudentID       string `json:"student_id"`
	StudentRecordID int64  `json:"student_record_id"`
	Name            string `json:"name"`
	RollNo          string `json:"roll_no"`
	Email           string `json:"email"`
	Status          string `json:"status"`
	EnrolledAt      string `json:"enrolled_at,omitempty"`
	UnenrolledAt    string `json:"unenrolled_at,omitempty"`
	ReEnrolledAt    string `json:"re_enrolled_at,omitempty"`
}

// EnrolledClass is the summary a student sees on their dashboard.
type EnrolledClass struct {
	ClassID     string `json:"class_id"`
	ClassName   string `json:"class_name"`
	TeacherName string `json:"teacher_name"`
	EnrolledAt  string `json:"enrolled_at,omitempty"`
}
