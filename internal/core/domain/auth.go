package domain

import "time"

// Session is one signed-in browser or client. Each session carries its own
// acting context, so two tabs of the same user can act for different accounts.
type Session struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Token           string    `json:"token"`
	RefreshToken    string    `json:"refresh_token,omitempty"`
	ActiveContextID string    `json:"active_context_id,omitempty"`
	UserAgent       string    `json:"user_agent,omitempty"`
	IPAddress       string    `json:"ip_address,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

// AuthContext is the caller identity attached to a request after the bearer
// token and its session have been checked.
type AuthContext struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// LoginResponse is returned by signup, login and refresh.
type LoginResponse struct {
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time    `json:"expires_at"`
	User         *UserSummary `json:"user"`
}

// TokenClaims is the signed access token payload. Times are unix seconds.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
