package dto

import "time"

const EventPasswordResetOTP = "user.password_reset_otp"

type PasswordResetOTPEvent struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
