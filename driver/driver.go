package driver

import (
	"database/sql"
	"log"
	"os"

	_ "github.com/go-sql-driver/mysql"
)

// ConnectDB opens the MySQL pool and makes sure the schema exists.
func ConnectDB() *sql.DB {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is not set")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatal("Error opening database:", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Could not connect to database:", err)
	}

	if err := ensureSchema(db); err != nil {
		log.Fatal("Error ensuring schema:", err)
	}
	return db
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(64) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'teacher',
		avatar_url VARCHAR(512),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS students (
		id VARCHAR(64) PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		roll_no VARCHAR(64),
		avatar_url VARCHAR(512),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS classes (
		class_id VARCHAR(64) PRIMARY KEY,
		teacher_id VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		students JSON,
		custom_columns JSON,
		thresholds JSON,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_classes_teacher (teacher_id)
	)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
		class_id VARCHAR(64) NOT NULL,
		student_id VARCHAR(64) NOT NULL,
		student_record_id BIGINT NOT NULL,
		name VARCHAR(255),
		roll_no VARCHAR(64),
		email VARCHAR(255),
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		enrolled_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		unenrolled_at TIMESTAMP NULL,
		re_enrolled_at TIMESTAMP NULL,
		PRIMARY KEY (class_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS qr_sessions (
		class_id VARCHAR(64) PRIMARY KEY,
		teacher_id VARCHAR(64) NOT NULL,
		attendance_date VARCHAR(10) NOT NULL,
		rotation_interval INT NOT NULL DEFAULT 5,
		current_code VARCHAR(16) NOT NULL,
		code_generated_at DATETIME NOT NULL,
		scanned_students JSON,
		status VARCHAR(16) NOT NULL DEFAULT 'active',
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		stopped_at TIMESTAMP NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL,
		subject VARCHAR(255),
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

func ensureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
