package controllers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"attendsheets/models"
	"attendsheets/utils"

	"github.com/google/uuid"
)

type AuthController struct{}

func getUserByEmail(db *sql.DB, email string) (models.User, error) {
	var user models.User
	var avatar sql.NullString
	err := db.QueryRow("SELECT id, email, name, password, role, avatar_url FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.Role, &avatar)
	user.AvatarURL = avatar.String
	return user, err
}

func getUserByID(db *sql.DB, id string) (models.User, error) {
	var user models.User
	var avatar sql.NullString
	err := db.QueryRow("SELECT id, email, name, password, role, avatar_url FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.Role, &avatar)
	user.AvatarURL = avatar.String
	return user, err
}

func getStudentByEmail(db *sql.DB, email string) (models.User, error) {
	var student models.User
	var avatar sql.NullString
	err := db.QueryRow("SELECT id, email, name, password, avatar_url FROM students WHERE email = ?", email).
		Scan(&student.ID, &student.Email, &student.Name, &student.Password, &avatar)
	student.Role = "student"
	student.AvatarURL = avatar.String
	return student, err
}

func userResponse(user models.User) models.UserResponse {
	return models.UserResponse{ID: user.ID, Email: user.Email, Name: user.Name, AvatarURL: user.AvatarURL}
}

// requireUser resolves the bearer token to a teacher account. It writes
// the error response itself, so callers just return on !ok.
func requireUser(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	email, _, err := utils.VerifyToken(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
		return models.User{}, false
	}

	user, err := getUserByEmail(db, email)
	if err == sql.ErrNoRows {
		utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "User not found"})
		return models.User{}, false
	} else if err != nil {
		log.Println("Error fetching user:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Server error"})
		return models.User{}, false
	}
	return user, true
}

// requireStudent is requireUser for the students table.
func requireStudent(db *sql.DB, w http.ResponseWriter, r *http.Request) (models.User, bool) {
	email, _, err := utils.VerifyToken(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
		return models.User{}, false
	}

	student, err := getStudentByEmail(db, email)
	if err == sql.ErrNoRows {
		utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "Student not found"})
		return models.User{}, false
	} else if err != nil {
		log.Println("Error fetching student:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Server error"})
		return models.User{}, false
	}
	return student, true
}

func (c AuthController) Signup(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		_, err := getUserByEmail(db, req.Email)
		if err == nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "User with this email already exists"})
			return
		} else if err != sql.ErrNoRows {
			log.Println("Error checking existing user:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Signup failed"})
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

		verificationCodes.Put(req.Email, pendingCode{Code: code, Name: req.Name, PasswordHash: hash, Role: "teacher"})

		message := "Verification code sent to your email"
		if utils.SendVerificationEmail(req.Email, req.Name, code) != nil {
			// Mail is best effort in development; surface the code instead.
			message = fmt.Sprintf("Code: %s", code)
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": message})
	}
}

func (c AuthController) VerifyEmail(db *sql.DB) http.HandlerFunc {
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
		if pending.Role == "student" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid verification attempt"})
			return
		}

		userID := "user_" + uuid.New().String()
		_, err := db.Exec("INSERT INTO users (id, email, name, password, role) VALUES (?, ?, ?, ?, ?)",
			userID, req.Email, pending.Name, pending.PasswordHash, "teacher")
		if err != nil {
			log.Println("Error creating user:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Verification failed"})
			return
		}
		verificationCodes.Delete(req.Email)

		respondWithToken(w, models.User{ID: userID, Email: req.Email, Name: pending.Name}, "")
	}
}

func (c AuthController) ResendVerification(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResendVerificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		pending, ok := verificationCodes.Get(req.Email)
		if !ok {
			if _, err := getUserByEmail(db, req.Email); err == nil {
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Email already verified"})
			} else {
				utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "No pending verification found for this email"})
			}
			return
		}

		code, err := utils.GenerateVerificationCode()
		if err != nil {
			log.Println("Error generating verification code:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to resend verification code"})
			return
		}

		pending.Code = code
		verificationCodes.Put(req.Email, pending)

		message := "New verification code sent to your email"
		if utils.SendVerificationEmail(req.Email, pending.Name, code) != nil {
			message = fmt.Sprintf("Code: %s", code)
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": message})
	}
}

func (c AuthController) Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		user, err := getUserByEmail(db, req.Email)
		if err == sql.ErrNoRows || (err == nil && !utils.ComparePasswords(user.Password, req.Password)) {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: "Invalid email or password"})
			return
		} else if err != nil {
			log.Println("Error querying user:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Server error"})
			return
		}

		respondWithToken(w, user, "")
	}
}

func (c AuthController) RequestPasswordReset(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PasswordResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		user, err := getUserByEmail(db, req.Email)
		if err != nil {
			// Don't reveal whether the email exists.
			utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "If account exists, reset code sent"})
			return
		}

		code, err := utils.GenerateVerificationCode()
		if err != nil {
			log.Println("Error generating reset code:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to send reset code"})
			return
		}

		passwordResetCodes.Put(req.Email, pendingCode{Code: code})
		utils.SendPasswordResetEmail(req.Email, user.Name, code)

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Reset code sent to your email"})
	}
}

func (c AuthController) ResetPassword(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyResetCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		if _, ok := redeemCode(passwordResetCodes, w, req.Email, req.Code); !ok {
			return
		}
		if len(req.NewPassword) < 8 {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Password must be at least 8 characters"})
			return
		}

		if !updatePassword(db, w, req.Email, req.NewPassword) {
			return
		}
		passwordResetCodes.Delete(req.Email)

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Password reset successfully"})
	}
}

func (c AuthController) RequestChangePassword(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
			return
		}

		name, found := accountName(db, email)
		if !found {
			utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "User not found"})
			return
		}

		code, err := utils.GenerateVerificationCode()
		if err != nil {
			log.Println("Error generating change-password code:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to send verification code"})
			return
		}

		passwordResetCodes.Put(email, pendingCode{Code: code})
		utils.SendPasswordResetEmail(email, name, code)

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Verification code sent"})
	}
}

func (c AuthController) ChangePassword(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
			return
		}

		var req ChangePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		if _, ok := redeemCode(passwordResetCodes, w, email, req.Code); !ok {
			return
		}
		if len(req.NewPassword) < 8 {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Password must be at least 8 characters"})
			return
		}

		if !updatePassword(db, w, email, req.NewPassword) {
			return
		}
		passwordResetCodes.Delete(email)

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Password changed successfully"})
	}
}

// UpdateProfile renames the account behind the token, teacher or student.
func (c AuthController) UpdateProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}

		if user, err := getUserByEmail(db, email); err == nil {
			if _, err := db.Exec("UPDATE users SET name = ? WHERE id = ?", req.Name, user.ID); err != nil {
				log.Println("Error updating user:", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update profile"})
				return
			}
			user.Name = req.Name
			utils.ResponseJSON(w, userResponse(user))
			return
		}

		if student, err := getStudentByEmail(db, email); err == nil {
			if _, err := db.Exec("UPDATE students SET name = ? WHERE id = ?", req.Name, student.ID); err != nil {
				log.Println("Error updating student:", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update profile"})
				return
			}
			student.Name = req.Name
			utils.ResponseJSON(w, userResponse(student))
			return
		}

		utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "User not found"})
	}
}

// UploadAvatar accepts a multipart "avatar" file, stores it on S3 and
// saves the URL on the account.
func (c AuthController) UploadAvatar(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, _, err := utils.VerifyToken(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
			return
		}

		file, header, err := r.FormFile("avatar")
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Avatar file is required"})
			return
		}
		defer file.Close()

		fileName := fmt.Sprintf("avatar-%s%s", uuid.New().String(), filepath.Ext(header.Filename))
		url, err := utils.UploadAvatarToS3(file, fileName)
		if err != nil {
			log.Println("Error uploading avatar:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to upload avatar"})
			return
		}

		table := "users"
		if _, err := getUserByEmail(db, email); err == sql.ErrNoRows {
			table = "students"
		}
		if _, err := db.Exec("UPDATE "+table+" SET avatar_url = ? WHERE email = ?", url, email); err != nil {
			log.Println("Error saving avatar URL:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to upload avatar"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "avatar_url": url})
	}
}

func (c AuthController) Me(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}
		utils.ResponseJSON(w, userResponse(user))
	}
}

func (c AuthController) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := utils.VerifyToken(r); err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, models.Error{Detail: err.Error()})
			return
		}
		// Stateless tokens; the client just drops its copy.
		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Logged out successfully"})
	}
}

// DeleteAccount removes the teacher and everything they own.
func (c AuthController) DeleteAccount(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(db, w, r)
		if !ok {
			return
		}

		rows, err := db.Query("SELECT class_id FROM classes WHERE teacher_id = ?", user.ID)
		if err != nil {
			log.Println("Error listing classes for deletion:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete account"})
			return
		}
		var classIDs []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				log.Println("Error scanning class id:", err)
				utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete account"})
				return
			}
			classIDs = append(classIDs, id)
		}
		rows.Close()

		for _, classID := range classIDs {
			if _, err := db.Exec("DELETE FROM enrollments WHERE class_id = ?", classID); err != nil {
				log.Println("Error deleting enrollments:", err)
			}
			if _, err := db.Exec("DELETE FROM qr_sessions WHERE class_id = ?", classID); err != nil {
				log.Println("Error deleting qr sessions:", err)
			}
		}
		if _, err := db.Exec("DELETE FROM classes WHERE teacher_id = ?", user.ID); err != nil {
			log.Println("Error deleting classes:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete account"})
			return
		}
		if _, err := db.Exec("DELETE FROM users WHERE id = ?", user.ID); err != nil {
			log.Println("Error deleting user:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to delete account"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Account deleted successfully"})
	}
}

// redeemCode validates a stored code without consuming it; callers delete
// it once the whole operation succeeds.
func redeemCode(store *codeStore, w http.ResponseWriter, email string, code string) (pendingCode, bool) {
	pending, ok := store.Get(email)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "No verification code found"})
		return pendingCode{}, false
	}
	if pending.ExpiresAt.Before(timeNow()) {
		store.Delete(email)
		utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Verification code expired"})
		return pendingCode{}, false
	}
	if pending.Code != code {
		utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid verification code"})
		return pendingCode{}, false
	}
	return pending, true
}

func updatePassword(db *sql.DB, w http.ResponseWriter, email string, newPassword string) bool {
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		log.Println("Error hashing password:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update password"})
		return false
	}

	if _, err := getUserByEmail(db, email); err == nil {
		if _, err := db.Exec("UPDATE users SET password = ? WHERE email = ?", hash, email); err != nil {
			log.Println("Error updating password:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update password"})
			return false
		}
		return true
	}
	if _, err := getStudentByEmail(db, email); err == nil {
		if _, err := db.Exec("UPDATE students SET password = ? WHERE email = ?", hash, email); err != nil {
			log.Println("Error updating student password:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to update password"})
			return false
		}
		return true
	}

	utils.RespondWithError(w, http.StatusNotFound, models.Error{Detail: "User not found"})
	return false
}

// accountName finds the display name for either account type.
func accountName(db *sql.DB, email string) (string, bool) {
	if user, err := getUserByEmail(db, email); err == nil {
		return user.Name, true
	}
	if student, err := getStudentByEmail(db, email); err == nil {
		return student.Name, true
	}
	return "", false
}

func respondWithToken(w http.ResponseWriter, user models.User, role string) {
	token, err := utils.GenerateAccessToken(user.Email, role)
	if err != nil {
		log.Println("Error generating token:", err)
		utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Server error"})
		return
	}
	utils.ResponseJSON(w, models.TokenResponse{AccessToken: token, User: userResponse(user)})
}
