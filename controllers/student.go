package controllers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"attendsheets/models"
	"attendsheets/utils"

	"github.com/google/uuid"
)

type StudentAuthController struct{}

func (c StudentAuthController) Signup(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		if _, err := getStudentByEmail(db, req.Email); err == nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Student with this email already exists"})
			return
		}
		// Teachers and students share the credential namespace.
		if _, err := getUserByEmail(db, req.Email); err == nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "This email is already registered as a teacher"})
			return
		}

		if len(req.Password) < 8 {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Password must be at least 8 characters long"})
			return
		}

		code, err := utils.GenerateVerificationCode()
		if err != nil {
			log.Println("Error generating verification code:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Signup failed"})
			return
		}

		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Println("Error hashing password:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Signup failed"})
			return
		}

		verificationCodes.Put(req.Email, pendingCode{Code: code, Name: req.Name, PasswordHash: hash, Role: "student"})

		message := "Verification code sent to your email"
		if utils.SendVerificationEmail(req.Email, req.Name, code) != nil {
			message = fmt.Sprintf("Code: %s", code)
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": message})
	}
}

func (c StudentAuthController) VerifyEmail(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		pending, ok := redeemCode(verificationCodes, w, req.Email, req.Code)
		if !ok {
			return
		}
		if pending.Role != "student" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid verification attempt"})
			return
		}

		studentID := "student_" + uuid.New().String()
		_, err := db.Exec("INSERT INTO students (id, email, name, password) VALUES (?, ?, ?, ?)",
			studentID, req.Email, pending.Name, pending.PasswordHash)
		if err != nil {
			log.Println("Error creating student:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Verification failed"})
			return
		}
		verificationCodes.Delete(req.Email)

		respondWithToken(w, models.User{ID: studentID, Email: req.Email, Name: pending.Name}, "student")
	}
}

func (c StudentAuthController) Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		student, err := getStudentByEmail(db, req.Email)
		if err == sql.ErrNoRows || (err == nil && !utils.ComparePasswords(student.Password, req.Password)) {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: "Invalid email or password"})
			return
		} else if err != nil {
			log.Println("Error querying student:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Server error"})
			return
		}

		respondWithToken(w, student, "student")
	}
}

// DeleteAccount removes the student account and its enrollments. The
// student records already written into class sheets stay put; teachers
// keep the attendance history.
func (c StudentAuthController) DeleteAccount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, ok := requireStudent(db, w, r)
		if !ok {
			return
		}

		if _, err := db.Exec("DELETE FROM enrollments WHERE student_id = ?", student.ID); err != nil {
			log.Println("Error deleting enrollments:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete student account"})
			return
		}
		if _, err := db.Exec("DELETE FROM students WHERE id = ?", student.ID); err != nil {
			log.Println("Error deleting student:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete student account"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Student account deleted successfully"})
	}
}
