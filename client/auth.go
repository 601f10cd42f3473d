package client

import (
	"context"
	"log"
	"net/http"

	"attendsheets/models"
)

type SignupParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type verifyParams struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a teacher account. The backend replies with a message
// and, when no mailer is configured, the verification code itself.
func (c *Client) Signup(ctx context.Context, params SignupParams) (string, error) {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, http.MethodPost, "/auth/signup", params, &envelope); err != nil {
		log.Println("Error signing up:", err)
		return "", err
	}
	return envelope.Message, nil
}

// VerifyEmail redeems a signup code and returns the issued token.
func (c *Client) VerifyEmail(ctx context.Context, email string, code string) (models.TokenResponse, error) {
	var token models.TokenResponse
	if err := c.apiCall(ctx, http.MethodPost, "/auth/verify-email", verifyParams{Email: email, Code: code}, &token); err != nil {
		log.Println("Error verifying email:", err)
		return models.TokenResponse{}, err
	}
	return token, nil
}

func (c *Client) Login(ctx context.Context, email string, password string) (models.TokenResponse, error) {
	var token models.TokenResponse
	if err := c.apiCall(ctx, http.MethodPost, "/auth/login", loginParams{Email: email, Password: password}, &token); err != nil {
		log.Println("Error logging in:", err)
		return models.TokenResponse{}, err
	}
	return token, nil
}

func (c *Client) Me(ctx context.Context) (models.UserResponse, error) {
	var user models.UserResponse
	if err := c.apiCall(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		log.Println("Error fetching profile:", err)
		return models.UserResponse{}, err
	}
	return user, nil
}

// ResendVerification asks for a fresh signup code.
func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	var envelope struct {
		Message string `json:"message"`
	}
	body := map[string]string{"email": email}
	if err := c.apiCall(ctx, http.MethodPost, "/auth/resend-verification", body, &envelope); err != nil {
		log.Println("Error resending verification:", err)
		return "", err
	}
	return envelope.Message, nil
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	if err := c.apiCall(ctx, http.MethodPost, "/auth/request-password-reset", body, nil); err != nil {
		log.Println("Error requesting password reset:", err)
		return err
	}
	return nil
}

func (c *Client) ResetPassword(ctx context.Context, email string, code string, newPassword string) error {
	body := map[string]string{"email": email, "code": code, "new_password": newPassword}
	if err := c.apiCall(ctx, http.MethodPost, "/auth/reset-password", body, nil); err != nil {
		log.Println("Error resetting password:", err)
		return err
	}
	return nil
}

// RequestChangePassword mails a confirmation code to the logged-in account.
func (c *Client) RequestChangePassword(ctx context.Context) error {
	if err := c.apiCall(ctx, http.MethodPost, "/auth/request-change-password", nil, nil); err != nil {
		log.Println("Error requesting password change:", err)
		return err
	}
	return nil
}

func (c *Client) ChangePassword(ctx context.Context, code string, newPassword string) error {
	body := map[string]string{"code": code, "new_password": newPassword}
	if err := c.apiCall(ctx, http.MethodPost, "/auth/change-password", body, nil); err != nil {
		log.Println("Error changing password:", err)
		return err
	}
	return nil
}

func (c *Client) UpdateProfile(ctx context.Context, name string) (models.UserResponse, error) {
	var user models.UserResponse
	body := map[string]string{"name": name}
	if err := c.apiCall(ctx, http.MethodPut, "/auth/update-profile", body, &user); err != nil {
		log.Println("Error updating profile:", err)
		return models.UserResponse{}, err
	}
	return user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.apiCall(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		log.Println("Error logging out:", err)
		return err
	}
	return nil
}

// DeleteAccount removes the teacher account and everything it owns.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.apiCall(ctx, http.MethodDelete, "/auth/delete-account", nil, nil); err != nil {
		log.Println("Error deleting account:", err)
		return err
	}
	return nil
}

// StudentSignup registers a student account.
func (c *Client) StudentSignup(ctx context.Context, params SignupParams) (string, error) {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, http.MethodPost, "/auth/student/signup", params, &envelope); err != nil {
		log.Println("Error signing up student:", err)
		return "", err
	}
	return envelope.Message, nil
}

func (c *Client) StudentVerifyEmail(ctx context.Context, email string, code string) (models.TokenResponse, error) {
	var token models.TokenResponse
	if err := c.apiCall(ctx, http.MethodPost, "/auth/student/verify-email", verifyParams{Email: email, Code: code}, &token); err != nil {
		log.Println("Error verifying student email:", err)
		return models.TokenResponse{}, err
	}
	return token, nil
}

func (c *Client) StudentLogin(ctx context.Context, email string, password string) (models.TokenResponse, error) {
	var token models.TokenResponse
	if err := c.apiCall(ctx, http.MethodPost, "/auth/student/login", loginParams{Email: email, Password: password}, &token); err != nil {
		log.Println("Error logging in student:", err)
		return models.TokenResponse{}, err
	}
	return token, nil
}

// DeleteStudentAccount removes the student account and its enrollments.
func (c *Client) DeleteStudentAccount(ctx context.Context) error {
	if err := c.apiCall(ctx, http.MethodDelete, "/auth/student/delete-account", nil, nil); err != nil {
		log.Println("Error deleting student account:", err)
		return err
	}
	return nil
}
