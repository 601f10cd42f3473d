package controllers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"attendsheets/models"
	"attendsheets/utils"

	"github.com/gorilla/mux"
)

type QRController struct{}

const sqlTimeLayout = "2006-01-02 15:04:05"

func loadQRSession(db *sql.DB, classID string) (models.QRSession, error) {
	var s models.QRSession
	var scannedJSON sql.NullString
	var startedAt, stoppedAt sql.NullString

	err := db.QueryRow(
		"SELECT class_id, teacher_id, attendance_date, rotation_interval, current_code, code_generated_at, scanned_students, status, started_at, stopped_at FROM qr_sessions WHERE class_id = ?",
		classID,
	).Scan(&s.ClassID, &s.TeacherID, &s.AttendanceDate, &s.RotationInterval, &s.CurrentCode, &s.CodeGeneratedAt, &scannedJSON, &s.Status, &startedAt, &stoppedAt)
	if err != nil {
		return s, err
	}

	s.ScannedStudents = []int64{}
	if scannedJSON.Valid && scannedJSON.String != "" {
		if err := json.Unmarshal([]byte(scannedJSON.String), &s.ScannedStudents); err != nil {
			log.Printf("Error decoding scanned students for class %s: %v", classID, err)
		}
	}
	s.StartedAt = startedAt.String
	s.StoppedAt = stoppedAt.String
	return s, nil
}

// activeQRSession loads the session for a class and rotates its code when
// the rotation interval has elapsed since the last code was issued.
func activeQRSession(db *sql.DB, classID string) (models.QRSession, bool) {
	session, err := loadQRSession(db, classID)
	if err == sql.ErrNoRows {
		return session, false
	} else if err != nil {
		log.Println("Error loading qr session:", err)
		return session, false
	}
	if session.Status != models.QRSessionActive {
		return session, false
	}

	generatedAt, err := time.Parse(sqlTimeLayout, session.CodeGeneratedAt)
	if err != nil {
		log.Printf("Error parsing code timestamp for class %s: %v", classID, err)
		return session, true
	}
	if timeNow().UTC().Sub(generatedAt) >= time.Duration(session.RotationInterval)*time.Second {
		session.CurrentCode = utils.GenerateQRCode()
		session.CodeGeneratedAt = timeNow().UTC().Format(sqlTimeLayout)
		_, err = db.Exec("UPDATE qr_sessions SET current_code = ?, code_generated_at = ? WHERE class_id = ?",
			session.CurrentCode, session.CodeGeneratedAt, classID)
		if err != nil {
			log.Println("Error rotating qr code:", err)
		}
	}
	return session, true
}

func saveScannedStudents(db *sql.DB, classID string, scanned []int64) error {
	data, err := json.Marshal(scanned)
	if err != nil {
		return err
	}
	_, err = db.Exec("UPDATE qr_sessions SET scanned_students = ? WHERE class_id = ?", string(data), classID)
	return err
}

// Start opens (or restarts) a QR attendance session for a class the
// teacher owns. One session per class; starting again resets it.
func (qc QRController) Start(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		var req QRStartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		if _, err := loadTeacherClass(db, user.ID, req.ClassID); err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found or unauthorized"})
			return
		} else if err != nil {
			log.Println("Error fetching class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to start QR session"})
			return
		}

		attendanceDate := req.AttendanceDate
		if attendanceDate == "" {
			attendanceDate = timeNow().UTC().Format("2006-01-02")
		}

		code := utils.GenerateQRCode()
		generatedAt := timeNow().UTC().Format(sqlTimeLayout)
		_, err := db.Exec(`REPLACE INTO qr_sessions
			(class_id, teacher_id, attendance_date, rotation_interval, current_code, code_generated_at, scanned_students, status, started_at, stopped_at)
			VALUES (?, ?, ?, 5, ?, ?, '[]', ?, NOW(), NULL)`,
			req.ClassID, user.ID, attendanceDate, code, generatedAt, models.QRSessionActive)
		if err != nil {
			log.Println("Error starting qr session:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to start QR session"})
			return
		}

		session, err := loadQRSession(db, req.ClassID)
		if err != nil {
			log.Println("Error loading qr session:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to start QR session"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "session": session})
	}
}

// Code returns the current code for an active session. Public so student
// devices can poll it while the teacher projects the QR.
func (qc QRController) Code(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := mux.Vars(r)["classId"]
		session, active := activeQRSession(db, classID)
		if !active {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "No active QR session"})
			return
		}
		utils.ResponseJSON(w, map[string]interface{}{"qr_code": session.CurrentCode})
	}
}

// Scan marks the logged-in student present for the session date.
func (qc QRController) Scan(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := requireStudent(db, w, r)
		if !ok {
			return
		}

		var req QRScanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		session, err := loadQRSession(db, req.ClassID)
		if err == sql.ErrNoRows || (err == nil && session.Status != models.QRSessionActive) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "No active session"})
			return
		} else if err != nil {
			log.Println("Error loading qr session:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to scan QR code"})
			return
		}
		if session.CurrentCode != req.QRCode {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid or expired QR code"})
			return
		}

		enrollment, err := loadEnrollment(db, req.ClassID, student.ID)
		if err == sql.ErrNoRows || (err == nil && enrollment.Status != models.EnrollmentActive) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Student not actively enrolled in this class"})
			return
		} else if err != nil {
			log.Println("Error loading enrollment:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to scan QR code"})
			return
		}

		rec, err := loadClassByID(db, req.ClassID)
		if err != nil {
			log.Println("Error loading class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to scan QR code"})
			return
		}

		marked := false
		for i := range rec.Students {
			if rec.Students[i].ID == enrollment.StudentRecordID {
				if rec.Students[i].Attendance == nil {
					rec.Students[i].Attendance = map[string]models.AttendanceMark{}
				}
				rec.Students[i].Attendance[session.AttendanceDate] = models.MarkPresent
				marked = true
				break
			}
		}
		if !marked {
			rec.Students = append(rec.Students, models.StudentRecord{
				ID:         enrollment.StudentRecordID,
				Name:       enrollment.Name,
				RollNo:     enrollment.RollNo,
				Email:      enrollment.Email,
				Attendance: map[string]models.AttendanceMark{session.AttendanceDate: models.MarkPresent},
			})
		}
		if err := saveClassStudents(db, req.ClassID, rec.Students); err != nil {
			log.Println("Error saving class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to scan QR code"})
			return
		}

		already := false
		for _, id := range session.ScannedStudents {
			if id == enrollment.StudentRecordID {
				already = true
				break
			}
		}
		if !already {
			session.ScannedStudents = append(session.ScannedStudents, enrollment.StudentRecordID)
			if err := saveScannedStudents(db, req.ClassID, session.ScannedStudents); err != nil {
				log.Println("Error updating scanned students:", err)
			}
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"success": true,
			"message": "Attendance marked as Present",
			"date":    session.AttendanceDate,
		})
	}
}

// Stop closes the session and marks every actively enrolled student who
// never scanned as absent for the session date.
func (qc QRController) Stop(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		session, err := loadQRSession(db, classID)
		if err == sql.ErrNoRows || (err == nil && session.Status != models.QRSessionActive) {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "No active session"})
			return
		} else if err != nil {
			log.Println("Error loading qr session:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to stop QR session"})
			return
		}
		if session.TeacherID != user.ID {
			utils.RespondWithError(w, http.StatusForbidden, models.Error{Detail: "Unauthorized"})
			return
		}

		rec, err := loadClassByID(db, classID)
		if err != nil {
			log.Println("Error loading class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to stop QR session"})
			return
		}

		active, err := activeRecordIDs(db, classID)
		if err != nil {
			log.Println("Error loading enrollments:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to stop QR session"})
			return
		}

		markedAbsent := markAbsentees(rec.Students, active, session.ScannedStudents, session.AttendanceDate)
		if err := saveClassStudents(db, classID, rec.Students); err != nil {
			log.Println("Error saving class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to stop QR session"})
			return
		}

		_, err = db.Exec("UPDATE qr_sessions SET status = ?, stopped_at = NOW() WHERE class_id = ?",
			models.QRSessionStopped, classID)
		if err != nil {
			log.Println("Error closing qr session:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to stop QR session"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"success":       true,
			"scanned_count": len(session.ScannedStudents),
			"absent_count":  markedAbsent,
			"date":          session.AttendanceDate,
		})
	}
}

// markAbsentees records "A" for every actively enrolled student who did
// not scan during the session and has no mark for the date yet. Inactive
// records and existing marks are left alone. Returns how many students
// were marked.
func markAbsentees(students []models.StudentRecord, active map[int64]bool, scannedStudents []int64, date string) int {
	scanned := make(map[int64]bool, len(scannedStudents))
	for _, id := range scannedStudents {
		scanned[id] = true
	}

	marked := 0
	for i := range students {
		id := students[i].ID
		if !active[id] || scanned[id] {
			continue
		}
		if students[i].Attendance == nil {
			students[i].Attendance = map[string]models.AttendanceMark{}
		}
		if _, ok := students[i].Attendance[date]; !ok {
			students[i].Attendance[date] = models.MarkAbsent
			marked++
		}
	}
	return marked
}

// Session tells the teacher whether their class has a live session.
func (qc QRController) Session(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		session, active := activeQRSession(db, classID)
		if !active || session.TeacherID != user.ID {
			utils.ResponseJSON(w, map[string]interface{}{"active": false})
			return
		}
		utils.ResponseJSON(w, map[string]interface{}{"active": true, "session": session})
	}
}
