// Package googleauth verifies Google-issued ID tokens out of process via the
// tokeninfo endpoint. The service never checks the token signature itself.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrInvalidToken covers any malformed, expired or untrusted ID token.
var ErrInvalidToken = errors.New("invalid google id token")

type Claims struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
	Picture       string
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Claims, error)
}

type Client struct {
	endpoint string
	clientID string
	http     *http.Client
}

func New(clientID string) *Client {
	return &Client{
		endpoint: "https://oauth2.googleapis.com/tokeninfo",
		clientID: clientID,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewWithEndpoint exists so tests can point the client at a stub server.
func NewWithEndpoint(clientID, endpoint string) *Client {
	c := New(clientID)
	c.endpoint = endpoint
	return c
}

type tokenInfo struct {
	Sub           string `json:"sub"`
	Aud           string `json:"aud"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Exp           string `json:"exp"`
}

func (c *Client) Verify(ctx context.Context, idToken string) (*Claims, error) {
	if idToken == "" {
		return nil, ErrInvalidToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.endpoint+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidToken
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, ErrInvalidToken
	}
	if info.Sub == "" {
		return nil, ErrInvalidToken
	}
	if c.clientID != "" && info.Aud != c.clientID {
		return nil, ErrInvalidToken
	}
	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err == nil {
		if time.Now().Unix() > exp {
			return nil, ErrInvalidToken
		}
	}

	return &Claims{
		Subject:       info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		EmailVerified: info.EmailVerified == "true",
		Picture:       info.Picture,
	}, nil
}
