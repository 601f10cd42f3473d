package controllers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"attendsheets/models"
	"attendsheets/utils"

	"github.com/gorilla/mux"
)

type ClassController struct{}

const selectClass = "SELECT class_id, teacher_id, name, students, custom_columns, thresholds, created_at, updated_at FROM classes"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClass(row rowScanner) (models.ClassRecord, error) {
	var rec models.ClassRecord
	var studentsJSON, columnsJSON, thresholdsJSON sql.NullString
	var createdAt, updatedAt sql.NullString

	err := row.Scan(&rec.ClassID, &rec.TeacherID, &rec.Name, &studentsJSON, &columnsJSON, &thresholdsJSON, &createdAt, &updatedAt)
	if err != nil {
		return rec, err
	}

	rec.Students = []models.StudentRecord{}
	if studentsJSON.Valid && studentsJSON.String != "" {
		if err := json.Unmarshal([]byte(studentsJSON.String), &rec.Students); err != nil {
			log.Printf("Error decoding students for class %s: %v", rec.ClassID, err)
		}
	}
	rec.CustomColumns = []models.CustomColumn{}
	if columnsJSON.Valid && columnsJSON.String != "" {
		if err := json.Unmarshal([]byte(columnsJSON.String), &rec.CustomColumns); err != nil {
			log.Printf("Error decoding custom columns for class %s: %v", rec.ClassID, err)
		}
	}
	if thresholdsJSON.Valid && thresholdsJSON.String != "" {
		var t models.AttendanceThresholds
		if err := json.Unmarshal([]byte(thresholdsJSON.String), &t); err != nil {
			log.Printf("Error decoding thresholds for class %s: %v", rec.ClassID, err)
		} else if !t.IsZero() {
			rec.Thresholds = &t
		}
	}
	rec.CreatedAt = createdAt.String
	rec.UpdatedAt = updatedAt.String
	return rec, nil
}

func loadClassByID(db *sql.DB, classID string) (models.ClassRecord, error) {
	return scanClass(db.QueryRow(selectClass+" WHERE class_id = ?", classID))
}

func loadTeacherClass(db *sql.DB, teacherID string, classID string) (models.ClassRecord, error) {
	return scanClass(db.QueryRow(selectClass+" WHERE class_id = ? AND teacher_id = ?", classID, teacherID))
}

func saveClassStudents(db *sql.DB, classID string, students []models.StudentRecord) error {
	data, err := json.Marshal(students)
	if err != nil {
		return err
	}
	_, err = db.Exec("UPDATE classes SET students = ? WHERE class_id = ?", string(data), classID)
	return err
}

// inactiveRecordIDs lists sheet record ids whose enrollment was
// deactivated. Those rows stay stored (attendance preserved for
// re-enrollment) but are hidden from every class view.
func inactiveRecordIDs(db *sql.DB, classID string) (map[int64]bool, error) {
	rows, err := db.Query("SELECT student_record_id FROM enrollments WHERE class_id = ? AND status != ?", classID, models.EnrollmentActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	inactive := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		inactive[id] = true
	}
	return inactive, rows.Err()
}

func activeRecordIDs(db *sql.DB, classID string) (map[int64]bool, error) {
	rows, err := db.Query("SELECT student_record_id FROM enrollments WHERE class_id = ? AND status = ?", classID, models.EnrollmentActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	active := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		active[id] = true
	}
	return active, rows.Err()
}

// presentClass is the read-side view of a class: inactive students
// hidden, statistics recomputed.
func presentClass(db *sql.DB, rec models.ClassRecord) models.ClassRecord {
	inactive, err := inactiveRecordIDs(db, rec.ClassID)
	if err != nil {
		log.Printf("Error loading enrollments for class %s: %v", rec.ClassID, err)
		inactive = nil
	}

	visible := make([]models.StudentRecord, 0, len(rec.Students))
	for _, student := range rec.Students {
		if !inactive[student.ID] {
			visible = append(visible, student)
		}
	}

	rec.Students = visible
	stats := utils.CalculateClassStatistics(visible, rec.Thresholds)
	rec.Statistics = &stats
	return rec
}

func marshalClassFields(payload ClassPayload) (studentsJSON string, columnsJSON string, thresholdsJSON interface{}, err error) {
	students := payload.Students
	if students == nil {
		students = []models.StudentRecord{}
	}
	columns := payload.CustomColumns
	if columns == nil {
		columns = []models.CustomColumn{}
	}

	s, err := json.Marshal(students)
	if err != nil {
		return "", "", nil, err
	}
	c, err := json.Marshal(columns)
	if err != nil {
		return "", "", nil, err
	}

	thresholdsJSON = nil
	if !payload.Thresholds.IsZero() {
		t, err := json.Marshal(payload.Thresholds)
		if err != nil {
			return "", "", nil, err
		}
		thresholdsJSON = string(t)
	}
	return string(s), string(c), thresholdsJSON, nil
}

func (cc ClassController) GetClasses(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		rows, err := db.Query(selectClass+" WHERE teacher_id = ?", user.ID)
		if err != nil {
			log.Println("Error listing classes:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch classes"})
			return
		}
		defer rows.Close()

		classes := []models.ClassRecord{}
		for rows.Next() {
			rec, err := scanClass(rows)
			if err != nil {
				log.Println("Error scanning class:", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch classes"})
				return
			}
			classes = append(classes, presentClass(db, rec))
		}

		utils.ResponseJSON(w, map[string]interface{}{"classes": classes})
	}
}

func (cc ClassController) GetClass(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		rec, err := loadTeacherClass(db, user.ID, classID)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err != nil {
			log.Println("Error fetching class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to fetch class"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"class": presentClass(db, rec)})
	}
}

func (cc ClassController) CreateClass(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		var payload ClassPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}
		if payload.ClassID == "" || payload.Name == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "class_id and name are required"})
			return
		}

		var existingID string
		err := db.QueryRow("SELECT class_id FROM classes WHERE class_id = ?", payload.ClassID).Scan(&existingID)
		if err == nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Class already exists"})
			return
		} else if err != sql.ErrNoRows {
			log.Println("Error checking for existing class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to create class"})
			return
		}

		studentsJSON, columnsJSON, thresholdsJSON, err := marshalClassFields(payload)
		if err != nil {
			log.Println("Error encoding class payload:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to create class"})
			return
		}

		_, err = db.Exec("INSERT INTO classes (class_id, teacher_id, name, students, custom_columns, thresholds) VALUES (?, ?, ?, ?, ?, ?)",
			payload.ClassID, user.ID, payload.Name, studentsJSON, columnsJSON, thresholdsJSON)
		if err != nil {
			log.Println("Error inserting class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to create class"})
			return
		}

		rec, err := loadClassByID(db, payload.ClassID)
		if err != nil {
			log.Println("Error reloading class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to create class"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "class": presentClass(db, rec)})
	}
}

func (cc ClassController) UpdateClass(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		current, err := loadTeacherClass(db, user.ID, classID)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err != nil {
			log.Println("Error fetching class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update class"})
			return
		}

		var payload ClassPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		finalStudents := current.Students
		if payload.Students != nil {
			var removed []int64
			finalStudents, removed = mergeStudents(current.Students, payload.Students)
			if len(removed) > 0 {
				deactivateEnrollments(db, classID, removed)
			}
		}

		payload.Students = finalStudents
		studentsJSON, columnsJSON, thresholdsJSON, err := marshalClassFields(payload)
		if err != nil {
			log.Println("Error encoding class payload:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update class"})
			return
		}

		_, err = db.Exec("UPDATE classes SET name = ?, students = ?, custom_columns = ?, thresholds = ? WHERE class_id = ? AND teacher_id = ?",
			payload.Name, studentsJSON, columnsJSON, thresholdsJSON, classID, user.ID)
		if err != nil {
			log.Println("Error updating class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update class"})
			return
		}

		rec, err := loadClassByID(db, classID)
		if err != nil {
			log.Println("Error reloading class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update class"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "class": presentClass(db, rec)})
	}
}

func (cc ClassController) DeleteClass(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		classID := mux.Vars(r)["classId"]
		result, err := db.Exec("DELETE FROM classes WHERE class_id = ? AND teacher_id = ?", classID, user.ID)
		if err != nil {
			log.Println("Error deleting class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete class"})
			return
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		}

		if _, err := db.Exec("DELETE FROM enrollments WHERE class_id = ?", classID); err != nil {
			log.Println("Error deleting enrollments:", err)
		}
		if _, err := db.Exec("DELETE FROM qr_sessions WHERE class_id = ?", classID); err != nil {
			log.Println("Error deleting qr session:", err)
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Class deleted successfully"})
	}
}

// VerifyClass is public: students check a class code before enrolling.
func (cc ClassController) VerifyClass(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classID := mux.Vars(r)["classId"]
		rec, err := loadClassByID(db, classID)
		if err == sql.ErrNoRows {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Class not found"})
			return
		} else if err != nil {
			log.Println("Error verifying class:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to verify class"})
			return
		}

		teacherName := "Unknown"
		if teacher, err := getUserByID(db, rec.TeacherID); err == nil {
			teacherName = teacher.Name
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"exists":       true,
			"class_name":   rec.Name,
			"teacher_name": teacherName,
			"class_id":     classID,
		})
	}
}

// mergeStudents folds an incoming sheet into the stored one. Stored rows
// missing from the incoming list are treated as removed by the teacher;
// their ids are returned so the matching enrollments can be deactivated,
// but the rows themselves are preserved for possible re-enrollment.
func mergeStudents(current []models.StudentRecord, incoming []models.StudentRecord) ([]models.StudentRecord, []int64) {
	incomingByID := make(map[int64]models.StudentRecord, len(incoming))
	for _, student := range incoming {
		incomingByID[student.ID] = student
	}

	final := make([]models.StudentRecord, 0, len(current)+len(incoming))
	seen := make(map[int64]bool, len(current))
	var removed []int64
	for _, student := range current {
		seen[student.ID] = true
		if updated, ok := incomingByID[student.ID]; ok {
			final = append(final, updated)
		} else {
			removed = append(removed, student.ID)
			final = append(final, student)
		}
	}
	for _, student := range incoming {
		if !seen[student.ID] {
			final = append(final, student)
		}
	}
	return final, removed
}

func deactivateEnrollments(db *sql.DB, classID string, recordIDs []int64) {
	for _, recordID := range recordIDs {
		_, err := db.Exec("UPDATE enrollments SET status = ?, unenrolled_at = NOW() WHERE class_id = ? AND student_record_id = ? AND status = ?",
			models.EnrollmentInactive, classID, recordID, models.EnrollmentActive)
		if err != nil {
			log.Printf("Error deactivating enrollment for record %d: %v", recordID, err)
		}
	}
}
