package dto

import (
	"time"

	"github.com/chirotrack/backend/internal/domain"
)

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=50"`
	LastName  string `json:"lastName" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=5"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type UserResponse struct {
	ID             uint       `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	Provider       string     `json:"provider"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	EmailVerified  bool       `json:"isEmailVerified"`
	ProfilePicture *string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Email:          u.Email,
		Provider:       u.Provider,
		LastLogin:      u.LastLogin,
		EmailVerified:  u.EmailVerified,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

type AuthData struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

type OTPIssuedData struct {
	Email     string `json:"email"`
	ExpiresIn int    `json:"expiresIn"`
}

type OTPVerifiedData struct {
	ResetToken string `json:"resetToken"`
	Email      string `json:"email"`
}
