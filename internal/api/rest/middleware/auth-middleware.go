package middleware

import (
	"errors"
	"strings"

	"github.com/chirotrack/backend/internal/domain"
	"github.com/chirotrack/backend/internal/helper/utils"
	"github.com/chirotrack/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	localsUser   = "user"
	localsUserID = "userID"
	localsToken  = "rawToken"
)

// BearerToken extracts the credential from the Authorization header. The
// empty string means absent or malformed.
func BearerToken(ctx *fiber.Ctx) string {
	header := strings.TrimSpace(ctx.Get("Authorization"))
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("bearer "):])
}

// Authenticate resolves the bearer credential to a user and attaches it to
// the request. The failure messages deliberately do not reveal whether the
// federated or the local verifier rejected the token.
func Authenticate(authSvc services.AuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := BearerToken(ctx)
		if token == "" {
			return utils.Unauthorized(ctx, "Access denied. No token provided.")
		}

		user, err := authSvc.ResolveBearer(ctx.UserContext(), token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenRevoked):
				return utils.Unauthorized(ctx, "Token has been invalidated. Please login again.")
			case errors.Is(err, services.ErrResolvedUserMissing):
				return utils.Unauthorized(ctx, "User not found.")
			default:
				return utils.Unauthorized(ctx, "Invalid token or token expired.")
			}
		}

		ctx.Locals(localsUser, user)
		ctx.Locals(localsUserID, user.ID)
		ctx.Locals(localsToken, token)
		return ctx.Next()
	}
}

// OptionalAuth runs the same resolution but never rejects: anonymous callers
// pass through with nothing attached.
func OptionalAuth(authSvc services.AuthService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if token := BearerToken(ctx); token != "" {
			if user, err := authSvc.ResolveBearer(ctx.UserContext(), token); err == nil {
				ctx.Locals(localsUser, user)
				ctx.Locals(localsUserID, user.ID)
				ctx.Locals(localsToken, token)
			}
		}
		return ctx.Next()
	}
}

func CurrentUser(ctx *fiber.Ctx) (*domain.User, bool) {
	user, ok := ctx.Locals(localsUser).(*domain.User)
	return user, ok
}

func CurrentUserID(ctx *fiber.Ctx) uint {
	id, _ := ctx.Locals(localsUserID).(uint)
	return id
}

func RawToken(ctx *fiber.Ctx) string {
	token, _ := ctx.Locals(localsToken).(string)
	return token
}
