package models

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UserResponse is the public projection of a teacher or student account.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// TokenResponse is returned by login and email verification.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}
