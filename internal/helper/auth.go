package helper

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrTokenInvalid = errors.New("invalid or expired token")
	ErrTokenExpired = errors.New("token expired")
)

const bcryptCost = 12

type TokenClaims struct {
	UserID    uint
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Auth signs and verifies the service's own session tokens. Tokens are
// self-contained: any holder of the secret can verify without storage.
type Auth struct {
	Secret   string
	TokenTTL time.Duration

	now func() time.Time
}

func SetupAuth(secret string, ttl time.Duration) Auth {
	return Auth{
		Secret:   secret,
		TokenTTL: ttl,
		now:      time.Now,
	}
}

func (a Auth) GenerateToken(userID uint) (string, error) {
	if userID == 0 || a.Secret == "" {
		return "", errors.New("required inputs are missing to generate token")
	}

	now := a.clock()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(a.TokenTTL).Unix(),
	})

	tokenStr, err := token.SignedString([]byte(a.Secret))
	if err != nil {
		return "", errors.New("unable to sign the token")
	}
	return tokenStr, nil
}

func (a Auth) VerifyToken(tokenString string) (TokenClaims, error) {
	if tokenString == "" {
		return TokenClaims{}, ErrTokenInvalid
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.Secret), nil
	}, jwt.WithTimeFunc(a.clock))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenClaims{}, ErrTokenExpired
		}
		return TokenClaims{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TokenClaims{}, ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(float64)
	if !ok || userID <= 0 {
		return TokenClaims{}, ErrTokenInvalid
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return TokenClaims{}, ErrTokenInvalid
	}

	out := TokenClaims{
		UserID:    uint(userID),
		ExpiresAt: time.Unix(int64(exp), 0),
	}
	if jti, ok := claims["jti"].(string); ok {
		out.TokenID = jti
	}
	if iat, ok := claims["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0)
	}
	return out, nil
}

func (a Auth) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", errors.New("failed to hash password")
	}
	return string(hashed), nil
}

func (a Auth) VerifyPassword(plain, hashed string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return errors.New("invalid email or password")
	}
	return nil
}

func (a Auth) clock() time.Time {
	if a.now != nil {
		return a.now()
	}
	return time.Now()
}
