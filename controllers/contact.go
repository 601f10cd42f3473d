package controllers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	"attendsheets/models"
	"attendsheets/utils"
)

type ContactController struct{}

// Submit stores a contact form message. Public endpoint.
func (cc ContactController) Submit(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "Invalid request body"})
			return
		}
		if req.Name == "" || req.Email == "" || req.Message == "" {
			utils.RespondWithError(w, http.StatusBadRequest, models.Error{Detail: "name, email and message are required"})
			return
		}

		_, err := db.Exec("INSERT INTO contact_messages (name, email, subject, message) VALUES (?, ?, ?, ?)",
			req.Name, req.Email, req.Subject, req.Message)
		if err != nil {
			log.Println("Error saving contact message:", err)
			utils.RespondWithError(w, http.StatusInternalServerError, models.Error{Detail: "Failed to send message"})
			return
		}

		utils.ResponseJSON(w, map[string]interface{}{"success": true, "message": "Message sent successfully"})
	}
}
