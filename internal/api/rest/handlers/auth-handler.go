package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/chirotrack/backend/internal/api/rest/middleware"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/helper/utils"
	"github.com/chirotrack/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) SetupRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/google-signin", h.GoogleSignIn)
	auth.Post("/logout", middleware.Authenticate(h.svc), h.Logout)

	auth.Post("/forgot-password", h.ForgotPassword)
	auth.Post("/resend-otp", h.ResendOTP)
	auth.Post("/verify-otp", h.VerifyOTP)
	auth.Post("/reset-password", h.ResetPassword)
}

func (h *AuthHandler) Register(ctx *fiber.Ctx) error {
	var requestBody dto.RegisterRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, token, err := h.svc.Register(ctx.UserContext(), requestBody)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return utils.Error(ctx, fiber.StatusBadRequest, "User already exists with this email address")
		case errors.Is(err, services.ErrInvalidInput),
			errors.Is(err, services.ErrInvalidEmail),
			errors.Is(err, services.ErrWeakPassword):
			return utils.Error(ctx, fiber.StatusBadRequest, err.Error())
		default:
			log.Printf("registration error: %v", err)
			return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error during registration")
		}
	}

	return utils.Success(ctx, fiber.StatusCreated, "User registered successfully", dto.AuthData{
		User:  dto.NewUserResponse(user),
		Token: token,
	})
}

func (h *AuthHandler) Login(ctx *fiber.Ctx) error {
	var requestBody dto.LoginRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	user, token, err := h.svc.Login(ctx.UserContext(), requestBody)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return utils.Unauthorized(ctx, "Invalid email or password")
		}
		log.Printf("login error: %v", err)
		return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error during login")
	}

	return utils.Success(ctx, fiber.StatusOK, "Login successful", dto.AuthData{
		User:  dto.NewUserResponse(user),
		Token: token,
	})
}

func (h *AuthHandler) GoogleSignIn(ctx *fiber.Ctx) error {
	var requestBody dto.GoogleSignInRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.IDToken == "" {
		return utils.Error(ctx, fiber.StatusBadRequest, "ID token is required")
	}

	user, token, err := h.svc.GoogleSignIn(ctx.UserContext(), requestBody.IDToken)
	if err != nil {
		log.Printf("google sign-in error: %v", err)
		return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error during Google sign-in")
	}

	return utils.Success(ctx, fiber.StatusOK, "Google sign-in successful", dto.AuthData{
		User:  dto.NewUserResponse(user),
		Token: token,
	})
}

func (h *AuthHandler) Logout(ctx *fiber.Ctx) error {
	if err := h.svc.Logout(ctx.UserContext(), middleware.RawToken(ctx)); err != nil {
		log.Printf("logout error: %v", err)
		return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error during logout")
	}
	return utils.Success(ctx, fiber.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) ForgotPassword(ctx *fiber.Ctx) error {
	return h.issueOTP(ctx, h.svc.RequestPasswordResetOTP, "Verification code sent to your email address")
}

func (h *AuthHandler) ResendOTP(ctx *fiber.Ctx) error {
	return h.issueOTP(ctx, h.svc.ResendPasswordResetOTP, "New verification code sent to your email address")
}

func (h *AuthHandler) issueOTP(ctx *fiber.Ctx, issue func(context.Context, string) (string, int, error), successMessage string) error {
	var requestBody dto.ForgotPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Email == "" {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide a valid email address")
	}

	email, expiresIn, err := issue(ctx.UserContext(), requestBody.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return utils.NotFound(ctx, "No user found with this email address")
		case errors.Is(err, services.ErrGoogleOnlyAccount):
			return utils.Error(ctx, fiber.StatusBadRequest,
				"This account uses Google sign-in. Please use Google to reset your password.")
		default:
			log.Printf("send otp error: %v", err)
			return utils.Error(ctx, fiber.StatusInternalServerError,
				"Internal server error while sending verification code")
		}
	}

	return utils.Success(ctx, fiber.StatusOK, successMessage, dto.OTPIssuedData{
		Email:     email,
		ExpiresIn: expiresIn,
	})
}

func (h *AuthHandler) VerifyOTP(ctx *fiber.Ctx) error {
	var requestBody dto.VerifyOTPRequest
	if err := ctx.BodyParser(&requestBody); err != nil || requestBody.Email == "" || requestBody.OTP == "" {
		return utils.Error(ctx, fiber.StatusBadRequest, "Email and verification code are required")
	}

	data, err := h.svc.VerifyPasswordResetOTP(ctx.UserContext(), requestBody.Email, requestBody.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return utils.NotFound(ctx, "No user found with this email address")
		case errors.Is(err, services.ErrNoChallenge):
			return utils.Error(ctx, fiber.StatusBadRequest, "No verification code found. Please request a new one.")
		case errors.Is(err, services.ErrOTPExpired):
			return utils.Error(ctx, fiber.StatusBadRequest, "Verification code has expired. Please request a new one.")
		case errors.Is(err, services.ErrOTPTooManyAttempts):
			return utils.Error(ctx, fiber.StatusBadRequest, "Too many failed attempts. Please request a new verification code.")
		case errors.Is(err, services.ErrOTPMismatch):
			return utils.Error(ctx, fiber.StatusBadRequest, "Invalid verification code. Please try again.")
		default:
			log.Printf("verify otp error: %v", err)
			return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error while verifying code")
		}
	}

	return utils.Success(ctx, fiber.StatusOK, "Email verified successfully", data)
}

func (h *AuthHandler) ResetPassword(ctx *fiber.Ctx) error {
	var requestBody dto.ResetPasswordRequest
	if err := ctx.BodyParser(&requestBody); err != nil {
		return utils.Error(ctx, fiber.StatusBadRequest, "Please provide valid inputs")
	}

	if err := h.svc.ResetPassword(ctx.UserContext(), requestBody); err != nil {
		switch {
		case errors.Is(err, services.ErrPasswordMismatch):
			return utils.Error(ctx, fiber.StatusBadRequest, "Password confirmation does not match")
		case errors.Is(err, services.ErrWeakPassword):
			return utils.Error(ctx, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrUserNotFound):
			return utils.NotFound(ctx, "No user found with this email address")
		default:
			log.Printf("reset password error: %v", err)
			return utils.Error(ctx, fiber.StatusInternalServerError, "Internal server error while resetting password")
		}
	}

	return utils.Success(ctx, fiber.StatusOK,
		"Password reset successfully. You can now login with your new password.", nil)
}
