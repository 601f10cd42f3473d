package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"attendsheets/models"
	"attendsheets/utils"

	"github.com/gorilla/mux"
)

type EnrollmentController struct{}

var (
	errClassNotFound   = errors.New("class not found")
	errAlreadyEnrolled = errors.New("already enrolled")
)

func loadEnrollment(db *sql.DB, classID string, studentID string) (models.Enrollment, error) {
	var e models.Enrollment
	var enrolledAt, unenrolledAt, reEnrolledAt sql.NullString
	var name, rollNo, email sql.NullString

	err := db.QueryRow(
		"SELECT class_id, student_id, student_record_id, name, roll_no, email, status, enrolled_at, unenrolled_at, re_enrolled_at FROM enrollments WHERE class_id = ? AND student_id = ?",
		classID, studentID,
	).Scan(&e.ClassID, &e.StudentID, &e.StudentRecordID, &name, &rollNo, &email, &e.Status, &enrolledAt, &unenrolledAt, &reEnrolledAt)
	if err != nil {
		return e, err
	}
	e.Name = name.String
	e.RollNo = rollNo.String
	e.Email = email.String
	e.EnrolledAt = enrolledAt.String
	e.UnenrolledAt = unenrolledAt.String
	e.ReEnrolledAt = reEnrolledAt.String
	return e, nil
}

// enrollStudent adds a student to a class sheet. A student who was
// unenrolled earlier gets their old record back, attendance included;
// anyone else gets a fresh record under recordID.
func enrollStudent(db *sql.DB, classID string, studentID string, recordID int64, name string, rollNo string, email string) (models.Enrollment, string, error) {
	rec, err := loadClassByID(db, classID)
	if err == sql.ErrNoRows {
		return models.Enrollment{}, "", errClassNotFound
	} else if err != nil {
		return models.Enrollment{}, "", err
	}

	previous, err := loadEnrollment(db, classID, studentID)
	switch {
	case err == nil && previous.Status == models.EnrollmentActive:
		return models.Enrollment{}, "", errAlreadyEnrolled

	case err == nil:
		// Re-enrollment: reactivate and restore the old sheet record.
		_, err = db.Exec(
			"UPDATE enrollments SET status = ?, re_enrolled_at = NOW(), name = ?, roll_no = ?, email = ? WHERE class_id = ? AND student_id = ?",
			models.EnrollmentActive, name, rollNo, email, classID, studentID)
		if err != nil {
			return models.Enrollment{}, "", err
		}

		var attendanceCount int
		rec.Students, attendanceCount = restoreStudentRecord(rec.Students, previous.StudentRecordID, name, rollNo, email)
		if err := saveClassStudents(db, classID, rec.Students); err != nil {
			return models.Enrollment{}, "", err
		}

		enrollment, err := loadEnrollment(db, classID, studentID)
		if err != nil {
			return models.Enrollment{}, "", err
		}
		message := fmt.Sprintf("Welcome back! Your %d attendance records have been restored.", attendanceCount)
		return enrollment, message, nil

	case err == sql.ErrNoRows:
		_, err = db.Exec(
			"INSERT INTO enrollments (class_id, student_id, student_record_id, name, roll_no, email, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
			classID, studentID, recordID, name, rollNo, email, models.EnrollmentActive)
		if err != nil {
			return models.Enrollment{}, "", err
		}

		rec.Students = append(rec.Students, models.StudentRecord{
			ID:         recordID,
			RollNo:     rollNo,
			Name:       name,
			Email:      email,
			Attendance: map[string]models.AttendanceMark{},
		})
		if err := saveClassStudents(db, classID, rec.Students); err != nil {
			return models.Enrollment{}, "", err
		}

		enrollment, err := loadEnrollment(db, classID, studentID)
		if err != nil {
			return models.Enrollment{}, "", err
		}
		return enrollment, "Successfully enrolled in class!", nil

	default:
		return models.Enrollment{}, "", err
	}
}

// restoreStudentRecord brings a returning student's sheet row back: a
// record matching recordID keeps its attendance and gets the fresh name
// and roll number; when the row went missing a new empty one is appended.
// Returns the updated sheet and how many attendance entries survived.
func restoreStudentRecord(students []models.StudentRecord, recordID int64, name string, rollNo string, email string) ([]models.StudentRecord, int) {
	for i := range students {
		if students[i].ID == recordID {
			students[i].Name = name
			students[i].RollNo = rollNo
			return students, len(students[i].Attendance)
		}
	}
	return append(students, models.StudentRecord{
		ID:         recordID,
		RollNo:     rollNo,
		Name:       name,
		Email:      email,
		Attendance: map[string]models.AttendanceMark{},
	}), 0
}

func newRecordID() int64 {
	return timeNow().UnixMilli()
}

// Enroll lets a teacher add a student account to a class directly.
func (ec EnrollmentController) Enroll(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		var req EnrollmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}
		if req.ClassID == "" || req.StudentID == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "class_id and student_id are required"})
			return
		}

		recordID := req.StudentRecordID
		if recordID == 0 {
			recordID = newRecordID()
		}

		enrollment, _, err := enrollStudent(db, req.ClassID, req.StudentID, recordID, req.Extra["name"], req.Extra["rollNo"], req.Extra["email"])
		if err == errClassNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err == errAlreadyEnrolled {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Student is already enrolled in this class"})
			return
		} else if err != nil {
			log.Println("Error enrolling student:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to enroll student"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "enrollment": enrollment})
	}
}

// StudentEnroll enrolls the logged-in student themselves.
func (ec EnrollmentController) StudentEnroll(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := requireStudent(db, w, r)
		if !ok {
			return
		}

		var req StudentEnrollmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}
		if req.Email != student.Email {
			utils.RespondWithError(w, http.StatusForbidden, models.Error{Detail: "You must use your registered email"})
			return
		}

		enrollment, message, err := enrollStudent(db, req.ClassID, student.ID, newRecordID(), req.Name, req.RollNo, req.Email)
		if err == errClassNotFound {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err == errAlreadyEnrolled {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "You are already enrolled in this class"})
			return
		} else if err != nil {
			log.Println("Error enrolling in class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to enroll in class"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"success":    true,
			"message":    message,
			"enrollment": enrollment,
		})
	}
}

// Unenroll marks the student's enrollment inactive. Their sheet record
// keeps its attendance and is simply hidden until they re-enroll.
func (ec EnrollmentController) Unenroll(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := requireStudent(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		if _, err := loadClassByID(db, classID); err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err != nil {
			log.Println("Error fetching class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to unenroll from class"})
			return
		}

		enrollment, err := loadEnrollment(db, classID, student.ID)
		if err == sql.ErrNoRows || (err == nil && enrollment.Status != models.EnrollmentActive) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "You are not actively enrolled in this class"})
			return
		} else if err != nil {
			log.Println("Error fetching enrollment:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to unenroll from class"})
			return
		}

		_, err = db.Exec("UPDATE enrollments SET status = ?, unenrolled_at = NOW() WHERE class_id = ? AND student_id = ?",
			models.EnrollmentInactive, classID, student.ID)
		if err != nil {
			log.Println("Error updating enrollment:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to unenroll from class"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"success": true,
			"message": "Successfully unenrolled from class",
		})
	}
}

// StudentClasses lists the classes the student is actively enrolled in.
func (ec EnrollmentController) StudentClasses(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := requireStudent(db, w, r)
		if !ok {
			return
		}

		rows, err := db.Query(`SELECT e.class_id, c.name, c.teacher_id, e.enrolled_at
			FROM enrollments e JOIN classes c ON c.class_id = e.class_id
			WHERE e.student_id = ? AND e.status = ?`, student.ID, models.EnrollmentActive)
		if err != nil {
			log.Println("Error fetching student classes:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch classes"})
			return
		}
		defer rows.Close()

		classes := []models.EnrolledClass{}
		for rows.Next() {
			var cls models.EnrolledClass
			var teacherID string
			var enrolledAt sql.NullString
			if err := rows.Scan(&cls.ClassID, &cls.ClassName, &teacherID, &enrolledAt); err != nil {
				log.Println("Error scanning enrollment:", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch classes"})
				return
			}
			cls.EnrolledAt = enrolledAt.String
			cls.TeacherName = "Unknown"
			if teacher, err := getUserByID(db, teacherID); err == nil {
				cls.TeacherName = teacher.Name
			}
			classes = append(classes, cls)
		}

		utils.ResponseJSON(w, map[string]interface{}{"classes": classes})
	}
}

// StudentClassDetail returns the student's own sheet record and
// statistics for a class they are actively enrolled in.
func (ec EnrollmentController) StudentClassDetail(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := requireStudent(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		enrollment, err := loadEnrollment(db, classID, student.ID)
		if err == sql.ErrNoRows || (err == nil && enrollment.Status != models.EnrollmentActive) {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found or student not enrolled"})
			return
		} else if err != nil {
			log.Println("Error fetching enrollment:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch class details"})
			return
		}

		rec, err := loadClassByID(db, classID)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err != nil {
			log.Println("Error fetching class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch class details"})
			return
		}

		var record *models.StudentRecord
		for i := range rec.Students {
			if rec.Students[i].ID == enrollment.StudentRecordID {
				record = &rec.Students[i]
				break
			}
		}
		if record == nil {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Student record not found in class"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"class_id":       classID,
			"class_name":     rec.Name,
			"teacher_id":     rec.TeacherID,
			"student_record": record,
			"thresholds":     rec.Thresholds,
			"statistics":     utils.CalculateStudentStatistics(*record, rec.Thresholds),
		})
	}
}
