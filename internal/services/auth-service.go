package services

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"log"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chirotrack/backend/internal/clients/googleauth"
	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/helper"
	"github.com/chirotrack/backend/internal/helper/utils"
	"github.com/chirotrack/backend/internal/interfaces"
	"github.com/chirotrack/backend/internal/repository"
)

var (
	ErrInvalidInput        = errors.New("invalid inputs")
	ErrInvalidEmail        = errors.New("please enter a valid email")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrEmailTaken          = errors.New("user already exists with this email address")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUserNotFound        = errors.New("no user found with this email address")
	ErrGoogleTokenInvalid  = errors.New("google token verification failed")
	ErrGoogleOnlyAccount   = errors.New("this account uses google sign-in")
	ErrNoChallenge         = errors.New("no verification code found")
	ErrOTPExpired          = errors.New("verification code has expired")
	ErrOTPTooManyAttempts  = errors.New("too many failed attempts")
	ErrOTPMismatch         = errors.New("invalid verification code")
	ErrPasswordMismatch    = errors.New("password confirmation does not match")
	ErrMailDelivery        = errors.New("failed to send verification code")
	ErrUnauthenticated     = errors.New("invalid token or token expired")
	ErrTokenRevoked        = errors.New("token has been invalidated")
	ErrResolvedUserMissing = errors.New("user not found")
)

const (
	otpTTL         = 3 * time.Minute
	otpMaxAttempts = 3
)

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, input dto.LoginRequest) (*domain.User, string, error)
	GoogleSignIn(ctx context.Context, idToken string) (*domain.User, string, error)

	// ResolveBearer turns one opaque bearer credential into a user: Google
	// verification first (auto-provisioning on first sight), then the local
	// session path (blacklist check, signature, user lookup).
	ResolveBearer(ctx context.Context, rawToken string) (*domain.User, error)
	Logout(ctx context.Context, rawToken string) error

	RequestPasswordResetOTP(ctx context.Context, email string) (string, int, error)
	ResendPasswordResetOTP(ctx context.Context, email string) (string, int, error)
	VerifyPasswordResetOTP(ctx context.Context, email, otp string) (*dto.OTPVerifiedData, error)
	ResetPassword(ctx context.Context, input dto.ResetPasswordRequest) error
}

type authService struct {
	repo      repository.UserRepository
	blacklist repository.TokenBlacklist
	auth      helper.Auth
	google    googleauth.Verifier
	producer  interfaces.ProducerHandler

	tolerateMailFailure bool
	now                 func() time.Time
}

func NewAuthService(
	repo repository.UserRepository,
	blacklist repository.TokenBlacklist,
	auth helper.Auth,
	google googleauth.Verifier,
	producer interfaces.ProducerHandler,
	tolerateMailFailure bool,
) AuthService {
	return &authService{
		repo:                repo,
		blacklist:           blacklist,
		auth:                auth,
		google:              google,
		producer:            producer,
		tolerateMailFailure: tolerateMailFailure,
		now:                 time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, string, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := utils.NormalizeEmail(input.Email)

	// Caps count characters, not bytes, so multibyte names fit.
	if firstName == "" || lastName == "" ||
		utf8.RuneCountInString(firstName) > 50 || utf8.RuneCountInString(lastName) > 50 {
		return nil, "", ErrInvalidInput
	}
	if !utils.IsValidEmail(email) {
		return nil, "", ErrInvalidEmail
	}
	if len(input.Password) < 6 {
		return nil, "", ErrWeakPassword
	}

	if existing, err := s.repo.FindUserByEmail(email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	}

	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user, err := s.repo.CreateUser(&domain.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hashed,
		Provider:     domain.ProviderLocal,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.repo.SaveUser(user); err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (*domain.User, string, error) {
	email := utils.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, "", ErrInvalidCredentials
	}

	// Unknown email and wrong password answer identically so the endpoint
	// cannot be used to enumerate accounts.
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if err := s.auth.VerifyPassword(input.Password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.repo.SaveUser(user); err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (*domain.User, string, error) {
	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, "", ErrGoogleTokenInvalid
	}

	user, err := s.resolveGoogleUser(ctx, claims)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	user.LastLogin = &now
	if err := s.repo.SaveUser(user); err != nil {
		return nil, "", err
	}

	// Issue our own session token so downstream requests carry one scheme.
	token, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// resolveGoogleUser finds the account for a verified Google subject,
// provisioning one on first sight.
func (s *authService) resolveGoogleUser(ctx context.Context, claims *googleauth.Claims) (*domain.User, error) {
	user, err := s.repo.FindUserByGoogleSub(claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	firstName, lastName := splitName(claims.Name)
	sub := claims.Subject
	newUser := &domain.User{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         utils.NormalizeEmail(claims.Email),
		GoogleSub:     &sub,
		Provider:      domain.ProviderGoogle,
		EmailVerified: claims.EmailVerified,
	}
	if claims.Picture != "" {
		pic := claims.Picture
		newUser.ProfilePicture = &pic
	}
	return s.repo.CreateUser(newUser)
}

func (s *authService) ResolveBearer(ctx context.Context, rawToken string) (*domain.User, error) {
	if rawToken == "" {
		return nil, ErrUnauthenticated
	}

	// Federated verification first. Each verifier fails cleanly on the
	// other's token type, so order alone disambiguates.
	if claims, err := s.google.Verify(ctx, rawToken); err == nil {
		return s.resolveGoogleUser(ctx, claims)
	}

	revoked, err := s.blacklist.IsRevoked(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	claims, err := s.auth.VerifyToken(rawToken)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResolvedUserMissing
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.auth.VerifyToken(rawToken)
	if err != nil {
		// Not one of ours (a Google token, most likely); its revocation
		// belongs to the external provider.
		log.Printf("logout without blacklist entry: %v", err)
		return nil
	}
	return s.blacklist.Revoke(ctx, rawToken, claims.UserID, claims.ExpiresAt)
}

func (s *authService) RequestPasswordResetOTP(ctx context.Context, email string) (string, int, error) {
	return s.issueResetOTP(ctx, email)
}

func (s *authService) ResendPasswordResetOTP(ctx context.Context, email string) (string, int, error) {
	// A reissue always supersedes the previous challenge: new code, fresh
	// expiry, attempts back to zero.
	return s.issueResetOTP(ctx, email)
}

func (s *authService) issueResetOTP(ctx context.Context, email string) (string, int, error) {
	normalized := utils.NormalizeEmail(email)

	user, err := s.repo.FindUserByEmail(normalized)
	if err != nil {
		return "", 0, ErrUserNotFound
	}
	if !user.HasPassword() {
		return "", 0, ErrGoogleOnlyAccount
	}

	code, err := generateOTP()
	if err != nil {
		return "", 0, err
	}
	expiresAt := s.now().Add(otpTTL)

	user.ResetOTP = domain.ResetOTP{
		Code:      &code,
		ExpiresAt: &expiresAt,
		Attempts:  0,
	}
	if err := s.repo.SaveUser(user); err != nil {
		return "", 0, err
	}

	if err := s.publishOTPEvent(normalized, code, expiresAt); err != nil {
		if !s.tolerateMailFailure {
			return "", 0, ErrMailDelivery
		}
		log.Printf("otp mail publish failed (tolerated): %v", err)
	}

	return normalized, int(otpTTL.Seconds()), nil
}

func (s *authService) VerifyPasswordResetOTP(ctx context.Context, email, otp string) (*dto.OTPVerifiedData, error) {
	normalized := utils.NormalizeEmail(email)

	user, err := s.repo.FindUserByEmail(normalized)
	if err != nil {
		return nil, ErrUserNotFound
	}

	challenge := user.ResetOTP
	if challenge.Code == nil || *challenge.Code == "" {
		return nil, ErrNoChallenge
	}

	if challenge.ExpiresAt == nil || challenge.ExpiresAt.Before(s.now()) {
		user.ResetOTP = domain.ResetOTP{}
		if err := s.repo.SaveUser(user); err != nil {
			return nil, err
		}
		return nil, ErrOTPExpired
	}

	// The code stays set after the cap so the state is visibly locked until
	// an explicit reissue.
	if challenge.Attempts >= otpMaxAttempts {
		return nil, ErrOTPTooManyAttempts
	}

	if *challenge.Code != otp {
		if err := s.repo.IncrementOTPAttempts(user.ID); err != nil {
			return nil, err
		}
		return nil, ErrOTPMismatch
	}

	user.ResetOTP = domain.ResetOTP{}
	if err := s.repo.SaveUser(user); err != nil {
		return nil, err
	}

	// Possession of the email channel is proven; hand back a short-lived
	// authorization artifact for the actual password mutation.
	resetToken, err := s.auth.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.OTPVerifiedData{
		ResetToken: resetToken,
		Email:      normalized,
	}, nil
}

func (s *authService) ResetPassword(ctx context.Context, input dto.ResetPasswordRequest) error {
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if len(input.NewPassword) < 6 {
		return ErrWeakPassword
	}

	normalized := utils.NormalizeEmail(input.Email)
	user, err := s.repo.FindUserByEmail(normalized)
	if err != nil {
		return ErrUserNotFound
	}

	hashed, err := s.auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return s.repo.SaveUser(user)
}

func (s *authService) publishOTPEvent(email, code string, expiresAt time.Time) error {
	if s.producer == nil {
		return errors.New("mail producer not configured")
	}
	payload, err := json.Marshal(dto.PasswordResetOTPEvent{
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}
	return s.producer.PublishMessage([]byte(dto.EventPasswordResetOTP), payload)
}

// generateOTP draws a 5-digit code uniformly from [10000, 99999].
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", errors.New("failed to generate verification code")
	}
	return (n.Add(n, big.NewInt(10000))).String(), nil
}

// splitName breaks a display name into first/last the way the sign-in
// providers report it: first token, then everything else.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "User", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
