package utils

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"mime/multipart"
	"net/http"
	"net/smtp"
	"os"
	"strings"
	"time"

	"attendsheets/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/golang-jwt/jwt"
	"golang.org/x/crypto/bcrypt"
)

func RespondWithError(w http.ResponseWriter, status int, apiError models.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiError); err != nil {
		log.Printf("Error encoding error response: %v", err)
	}
}

func ResponseJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode JSON", http.StatusInternalServerError)
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func ComparePasswords(hashedPassword string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// GenerateAccessToken builds the HS256 bearer token carried by every
// authenticated request. The subject is the account email; student tokens
// additionally carry a role claim.
func GenerateAccessToken(email string, role string) (string, error) {
	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		return "", errors.New("SECRET_KEY environment variable is not set")
	}

	claims := jwt.MapClaims{
		"iss": "attendsheets",
		"sub": email,
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	if role != "" {
		claims["role"] = role
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// VerifyToken checks the Authorization header and returns the email and
// role baked into the bearer token.
func VerifyToken(r *http.Request) (string, string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", "", errors.New("Authorization header missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", errors.New("Invalid Authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(os.Getenv("SECRET_KEY")), nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return "", "", errors.New("Token has expired")
		}
		return "", "", errors.New("Could not validate credentials")
	}
	if !token.Valid {
		return "", "", errors.New("Could not validate credentials")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("Invalid token claims")
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", "", errors.New("Invalid authentication credentials")
	}

	role, _ := claims["role"].(string)
	return email, role, nil
}

// GenerateVerificationCode returns a 6-digit code for email verification
// and password resets.
func GenerateVerificationCode() (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", num.Int64()), nil
}

// GenerateQRCode returns an 8-character rotating attendance code.
func GenerateQRCode() string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	code := make([]byte, 8)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			code[i] = charset[0]
			continue
		}
		code[i] = charset[num.Int64()]
	}
	return string(code)
}

func smtpSettings() (host string, port string, username string, password string, from string) {
	host = os.Getenv("SMTP_SERVER")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port = os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	username = os.Getenv("SMTP_USERNAME")
	password = os.Getenv("SMTP_PASSWORD")
	from = os.Getenv("FROM_EMAIL")
	if from == "" {
		from = username
	}
	return
}

func sendMail(to string, subject string, body string) error {
	host, port, username, password, from := smtpSettings()
	if username == "" || password == "" {
		return errors.New("SMTP credentials are not configured")
	}

	auth := smtp.PlainAuth("", username, password, host)
	msg := []byte("To: " + to + "\r\n" +
		"From: Lernova Attendsheets <" + from + ">\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}

func SendVerificationEmail(to string, name string, code string) error {
	body := fmt.Sprintf(
		"Welcome %s!\n\nYour Lernova Attendsheets verification code is: %s\n\nThis code will expire in 15 minutes.\nIf you didn't create an account, you can safely ignore this email.",
		name, code)
	err := sendMail(to, "Verify Your Lernova Attendsheets Account", body)
	if err != nil {
		log.Printf("Error sending verification email to %s: %v", to, err)
	}
	return err
}

func SendPasswordResetEmail(to string, name string, code string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received a request to reset your Lernova Attendsheets password.\nYour reset code is: %s\n\nThis code will expire in 15 minutes.\nIf you didn't request a reset, please ignore this email.",
		name, code)
	err := sendMail(to, "Reset Your Lernova Attendsheets Password", body)
	if err != nil {
		log.Printf("Error sending reset email to %s: %v", to, err)
	}
	return err
}

// UploadAvatarToS3 stores a profile picture and returns its public URL.
func UploadAvatarToS3(file multipart.File, fileName string) (string, error) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	region := os.Getenv("AWS_REGION")
	bucketName := os.Getenv("AWS_AVATAR_BUCKET")

	if accessKey == "" || secretKey == "" || region == "" || bucketName == "" {
		return "", errors.New("AWS credentials are not configured")
	}

	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
	})
	if err != nil {
		return "", err
	}

	svc := s3.New(sess)
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(fileName),
		Body:   file,
		ACL:    aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucketName, region, fileName), nil
}
