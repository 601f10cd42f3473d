package client

import (
	"context"
	"log"
	"net/http"

	"attendsheets/models"
)

type EnrollParams struct {
	ClassID string `json:"class_id"`
	Name    string `json:"name"`
	RollNo  string `json:"rollNo"`
	Email   string `json:"email"`
}

// Enroll joins the logged-in student to a class.
func (c *Client) Enroll(ctx context.Context, params EnrollParams) (models.Enrollment, string, error) {
	var envelope struct {
		Success    bool              `json:"success"`
		Message    string            `json:"message"`
		Enrollment models.Enrollment `json:"enrollment"`
	}
	if err := c.apiCall(ctx, http.MethodPost, "/student/enroll", params, &envelope); err != nil {
		log.Println("Error enrolling:", err)
		return models.Enrollment{}, "", err
	}
	return envelope.Enrollment, envelope.Message, nil
}

// Unenroll leaves a class. Attendance stays on the server for a possible
// re-enrollment later.
func (c *Client) Unenroll(ctx context.Context, classID string) error {
	if err := c.apiCall(ctx, http.MethodDelete, "/student/unenroll/"+classID, nil, nil); err != nil {
		log.Println("Error unenrolling:", err)
		return err
	}
	return nil
}

// EnrolledClasses lists the classes the student is actively enrolled in.
func (c *Client) EnrolledClasses(ctx context.Context) ([]models.EnrolledClass, error) {
	var envelope struct {
		Classes []models.EnrolledClass `json:"classes"`
	}
	if err := c.apiCall(ctx, http.MethodGet, "/student/classes", nil, &envelope); err != nil {
		log.Println("Error fetching enrolled classes:", err)
		return nil, err
	}
	if envelope.Classes == nil {
		envelope.Classes = []models.EnrolledClass{}
	}
	return envelope.Classes, nil
}

// ClassDetail is the student's own view of a class they attend.
type ClassDetail struct {
	ClassID       string                       `json:"class_id"`
	ClassName     string                       `json:"class_name"`
	TeacherID     string                       `json:"teacher_id"`
	StudentRecord models.StudentRecord         `json:"student_record"`
	Thresholds    *models.AttendanceThresholds `json:"thresholds"`
	Statistics    models.StudentStatistics     `json:"statistics"`
}

func (c *Client) StudentClassDetail(ctx context.Context, classID string) (ClassDetail, error) {
	var detail ClassDetail
	if err := c.apiCall(ctx, http.MethodGet, "/student/class/"+classID, nil, &detail); err != nil {
		log.Println("Error fetching class detail:", err)
		return ClassDetail{}, err
	}
	return detail, nil
}

// VerifyClass checks a class code before enrolling. No auth required.
type ClassVerification struct {
	Exists      bool   `json:"exists"`
	ClassName   string `json:"class_name"`
	TeacherName string `json:"teacher_name"`
	ClassID     string `json:"class_id"`
}

func (c *Client) VerifyClass(ctx context.Context, classID string) (ClassVerification, error) {
	var verification ClassVerification
	if err := c.apiCall(ctx, http.MethodGet, "/class/verify/"+classID, nil, &verification); err != nil {
		log.Println("Error verifying class:", err)
		return ClassVerification{}, err
	}
	return verification, nil
}
