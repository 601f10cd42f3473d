package controllers

import "attendsheets/models"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type VerifyResetCodeRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordRequest struct {
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ClassPayload is what POST /classes and PUT /classes/{id} accept: the
// canonical backend shape. Students is optional; when omitted the stored
// student list is left untouched.
type ClassPayload struct {
	ClassID       string                       `json:"class_id"`
	Name          string                       `json:"name"`
	Thresholds    *models.AttendanceThresholds `json:"thresholds"`
	CustomColumns []models.CustomColumn        `json:"custom_columns"`
	Students      []models.StudentRecord       `json:"students,omitempty"`
}

// EnrollmentRequest is the teacher-driven enrollment body.
type EnrollmentRequest struct {
	ClassID         string            `json:"class_id"`
	StudentID       string            `json:"student_id"`
	StudentRecordID int64             `json:"student_record_id"`
	Extra           map[string]string `json:"extra"`
}

// StudentEnrollmentRequest is a student enrolling themselves.
type StudentEnrollmentRequest struct {
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
	RollNo  string `json:"rollNo"`
	Email   string `json:"email"`
}

type QRStartRequest struct {
	ClassID        string `json:"class_id"`
	AttendanceDate string `json:"attendance_date"`
}

type QRScanRequest struct {
	ClassID string `json:"class_id"`
	QRCode  string `json:"qr_code"`
}
