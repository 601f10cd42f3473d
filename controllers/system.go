package controllers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"attendsheets/utils"
)

type SystemController struct{}

func (sc SystemController) Root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, map[string]interface{}{
			"name":    "Attendsheets API",
			"status":  "running",
			"version": "1.0",
		})
	}
}

func (sc SystemController) Health(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		database := "mysql"
		if err := db.Ping(); err != nil {
			database = "unreachable"
		}
		utils.ResponseJSON(w, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  database,
		})
	}
}

// Stats reports rough table counts, handy for monitoring dashboards.
func (sc SystemController) Stats(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var totalUsers, totalStudents, totalClasses int
		var totalClassStudents sql.NullInt64

		if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&totalUsers); err != nil {
			log.Println("Error counting users:", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM students").Scan(&totalStudents); err != nil {
			log.Println("Error counting students:", err)
		}
		if err := db.QueryRow("SELECT COUNT(*) FROM classes").Scan(&totalClasses); err != nil {
			log.Println("Error counting classes:", err)
		}
		if err := db.QueryRow("SELECT SUM(JSON_LENGTH(students)) FROM classes").Scan(&totalClassStudents); err != nil {
			log.Println("Error counting class students:", err)
		}

		utils.ResponseJSON(w, map[string]interface{}{
			"total_users":          totalUsers,
			"total_students":       totalStudents,
			"total_classes":        totalClasses,
			"total_class_students": totalClassStudents.Int64,
			"timestamp":            time.Now().UTC().Format(time.RFC3339),
		})
	}
}
