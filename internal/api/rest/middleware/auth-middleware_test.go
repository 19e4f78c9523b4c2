package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/dto"
	"github.com/chirotrack/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthService struct {
	user *domain.User
	err  error
}

func (s *stubAuthService) Register(ctx context.Context, input dto.RegisterRequest) (*domain.User, string, error) {
	return nil, "", nil
}

func (s *stubAuthService) Login(ctx context.Context, input dto.LoginRequest) (*domain.User, string, error) {
	return nil, "", nil
}

func (s *stubAuthService) GoogleSignIn(ctx context.Context, idToken string) (*domain.User, string, error) {
	return nil, "", nil
}

func (s *stubAuthService) ResolveBearer(ctx context.Context, rawToken string) (*domain.User, error) {
	return s.user, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, rawToken string) error { return nil }

func (s *stubAuthService) RequestPasswordResetOTP(ctx context.Context, email string) (string, int, error) {
	return "", 0, nil
}

func (s *stubAuthService) ResendPasswordResetOTP(ctx context.Context, email string) (string, int, error) {
	return "", 0, nil
}

func (s *stubAuthService) VerifyPasswordResetOTP(ctx context.Context, email, otp string) (*dto.OTPVerifiedData, error) {
	return nil, nil
}

func (s *stubAuthService) ResetPassword(ctx context.Context, input dto.ResetPasswordRequest) error {
	return nil
}

func newProtectedApp(svc services.AuthService) *fiber.App {
	app := fiber.New()
	app.Get("/protected", Authenticate(svc), func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{"userId": CurrentUserID(ctx)})
	})
	app.Get("/open", OptionalAuth(svc), func(ctx *fiber.Ctx) error {
		_, authed := CurrentUser(ctx)
		return ctx.JSON(fiber.Map{"authenticated": authed})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authorization string, path string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestAuthenticateMissingToken(t *testing.T) {
	app := newProtectedApp(&stubAuthService{user: &domain.User{ID: 7}})

	resp, body := doRequest(t, app, "", "/protected")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access denied. No token provided.", body["message"])

	// A non-bearer scheme counts as absent.
	resp, _ = doRequest(t, app, "Basic abc123", "/protected")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticateAttachesUser(t *testing.T) {
	app := newProtectedApp(&stubAuthService{user: &domain.User{ID: 7}})

	resp, body := doRequest(t, app, "Bearer some-token", "/protected")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(7), body["userId"])
}

func TestAuthenticateCaseInsensitiveScheme(t *testing.T) {
	app := newProtectedApp(&stubAuthService{user: &domain.User{ID: 7}})

	resp, _ := doRequest(t, app, "bearer some-token", "/protected")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthenticateErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"revoked", services.ErrTokenRevoked, "Token has been invalidated. Please login again."},
		{"user gone", services.ErrResolvedUserMissing, "User not found."},
		{"anything else", services.ErrUnauthenticated, "Invalid token or token expired."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newProtectedApp(&stubAuthService{err: tc.err})
			resp, body := doRequest(t, app, "Bearer tok", "/protected")
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, tc.want, body["message"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	app := newProtectedApp(&stubAuthService{err: services.ErrUnauthenticated})

	resp, body := doRequest(t, app, "Bearer bad-token", "/open")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["authenticated"])

	app = newProtectedApp(&stubAuthService{user: &domain.User{ID: 7}})
	resp, body = doRequest(t, app, "Bearer good-token", "/open")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["authenticated"])
}

func TestBearerTokenParsing(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/", func(ctx *fiber.Ctx) error {
		got = BearerToken(ctx)
		return ctx.SendStatus(http.StatusOK)
	})

	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER abc", "abc"},
		{"Bearer   abc  ", "abc"},
		{"Token abc", ""},
		{"", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		_, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "header %q", tc.header)
	}
}
