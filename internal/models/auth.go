package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest holds the self-registration form. Only the profile fields reach the
// session; the password and student id are collected but not stored.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	StudentID       string `json:"studentId"`
	Department      string `json:"department" validate:"required"`
	Program         string `json:"program" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// ForgotPasswordRequest starts the simulated reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthResponse is returned after sign-in or registration.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	ClientID    string    `json:"client_id"`
	User        Session   `json:"user"`
}

// AccessClaims is the JWT payload. It identifies the client whose gate holds the
// session; it never grants access on its own.
type AccessClaims struct {
	ClientID string   `json:"client_id"`
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
