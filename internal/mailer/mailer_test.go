package mailer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/chirotrack/backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOTPTemplate(t *testing.T) {
	svc := NewMailService("smtp.example.com", 587, "", "", "noreply@example.com", "ChiroTrack")

	body, err := svc.renderOTPTemplate("12345")
	require.NoError(t, err)

	assert.Contains(t, body, "12345")
	assert.Contains(t, body, "expire in 3 minutes")
	assert.Contains(t, body, "3 attempts")
}

func TestHandleMessageWithoutSMTPConfig(t *testing.T) {
	svc := NewMailService("smtp.example.com", 587, "", "", "noreply@example.com", "ChiroTrack")

	payload, err := json.Marshal(dto.PasswordResetOTPEvent{
		Email:     "jane@example.com",
		Code:      "12345",
		ExpiresAt: time.Now().Add(3 * time.Minute),
	})
	require.NoError(t, err)

	// Without credentials the send is logged, not attempted.
	assert.NoError(t, svc.HandleMessage([]byte(dto.EventPasswordResetOTP), payload))
}

func TestHandleMessageUnknownKeyIsSkipped(t *testing.T) {
	svc := NewMailService("smtp.example.com", 587, "", "", "noreply@example.com", "ChiroTrack")
	assert.NoError(t, svc.HandleMessage([]byte("some.other.event"), []byte(`{}`)))
}

func TestHandleMessageBadPayload(t *testing.T) {
	svc := NewMailService("smtp.example.com", 587, "", "", "noreply@example.com", "ChiroTrack")
	err := svc.HandleMessage([]byte(dto.EventPasswordResetOTP), []byte(`not json`))
	assert.Error(t, err)
}
