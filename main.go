package main

import (
	"log"
	"net/http"
	"os"

	"attendsheets/controllers"
	"attendsheets/driver"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}
	if os.Getenv("SECRET_KEY") == "" {
		log.Fatal("SECRET_KEY variable is not set")
	}

	db := driver.ConnectDB()
	defer db.Close()

	authController := controllers.AuthController{}
	studentAuthController := controllers.StudentAuthController{}
	classController := controllers.ClassController{}
	enrollmentController := controllers.EnrollmentController{}
	qrController := controllers.QRController{}
	contactController := controllers.ContactController{}
	systemController := controllers.SystemController{}

	router := mux.NewRouter()

	router.HandleFunc("/", systemController.Root()).Methods("GET")
	router.HandleFunc("/health", systemController.Health(db)).Methods("GET")
	router.HandleFunc("/stats", systemController.Stats(db)).Methods("GET")

	router.HandleFunc("/auth/signup", authController.Signup(db)).Methods("POST")
	router.HandleFunc("/auth/verify-email", authController.VerifyEmail(db)).Methods("POST")
	router.HandleFunc("/auth/resend-verification", authController.ResendVerification(db)).Methods("POST")
	router.HandleFunc("/auth/login", authController.Login(db)).Methods("POST")
	router.HandleFunc("/auth/request-password-reset", authController.RequestPasswordReset(db)).Methods("POST")
	router.HandleFunc("/auth/reset-password", authController.ResetPassword(db)).Methods("POST")
	router.HandleFunc("/auth/request-change-password", authController.RequestChangePassword(db)).Methods("POST")
	router.HandleFunc("/auth/change-password", authController.ChangePassword(db)).Methods("POST")
	router.HandleFunc("/auth/update-profile", authController.UpdateProfile(db)).Methods("PUT")
	router.HandleFunc("/auth/avatar", authController.UploadAvatar(db)).Methods("POST")
	router.HandleFunc("/auth/me", authController.Me(db)).Methods("GET")
	router.HandleFunc("/auth/logout", authController.Logout()).Methods("POST")
	router.HandleFunc("/auth/delete-account", authController.DeleteAccount(db)).Methods("DELETE")

	router.HandleFunc("/auth/student/signup", studentAuthController.Signup(db)).Methods("POST")
	router.HandleFunc("/auth/student/verify-email", studentAuthController.VerifyEmail(db)).Methods("POST")
	router.HandleFunc("/auth/student/login", studentAuthController.Login(db)).Methods("POST")
	router.HandleFunc("/auth/student/delete-account", studentAuthController.DeleteAccount(db)).Methods("DELETE")

	router.HandleFunc("/classes", classController.GetClasses(db)).Methods("GET")
	router.HandleFunc("/classes", classController.CreateClass(db)).Methods("POST")
	router.HandleFunc("/classes/{classId}", classController.GetClass(db)).Methods("GET")
	router.HandleFunc("/classes/{classId}", classController.UpdateClass(db)).Methods("PUT")
	router.HandleFunc("/classes/{classId}", classController.DeleteClass(db)).Methods("DELETE")
	router.HandleFunc("/class/verify/{classId}", classController.VerifyClass(db)).Methods("GET")

	router.HandleFunc("/enroll", enrollmentController.Enroll(db)).Methods("POST")
	router.HandleFunc("/student/enroll", enrollmentController.StudentEnroll(db)).Methods("POST")
	router.HandleFunc("/student/unenroll/{classId}", enrollmentController.Unenroll(db)).Methods("DELETE")
	router.HandleFunc("/student/classes", enrollmentController.StudentClasses(db)).Methods("GET")
	router.HandleFunc("/student/class/{classId}", enrollmentController.StudentClassDetail(db)).Methods("GET")

	router.HandleFunc("/qr/start", qrController.Start(db)).Methods("POST")
	router.HandleFunc("/qr/scan", qrController.Scan(db)).Methods("POST")
	router.HandleFunc("/qr/stop/{classId}", qrController.Stop(db)).Methods("POST")
	router.HandleFunc("/qr/session/{classId}", qrController.Session(db)).Methods("GET")
	router.HandleFunc("/qr/{classId}", qrController.Code(db)).Methods("GET")

	router.HandleFunc("/contact", contactController.Submit(db)).Methods("POST")

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Println("Server started on port " + port)
	// The CORS wrapper sits outside the router so preflight requests get
	// their headers even when no method-restricted route matches.
	log.Fatal(http.ListenAndServe(":"+port, corsMiddleware(router)))
}
