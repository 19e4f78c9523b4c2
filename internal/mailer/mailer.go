package mailer

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/chirotrack/backend/internal/dto"
)

const otpSubject = "Password Reset Verification Code - ChiroTrack"

var otpTemplate = template.Must(template.New("reset-otp").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Password Reset - ChiroTrack</title>
  <style>
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f4f4f4; }
    .container { background-color: #ffffff; padding: 30px; border-radius: 10px; }
    .logo { font-size: 28px; font-weight: bold; color: #dc3545; text-align: center; }
    .otp-container { background-color: #f8f9fa; border: 2px dashed #dc3545; border-radius: 8px; padding: 20px; text-align: center; margin: 20px 0; }
    .otp-code { font-size: 32px; font-weight: bold; color: #dc3545; letter-spacing: 5px; }
    .warning { background-color: #fff3cd; border: 1px solid #ffeaa7; border-radius: 5px; padding: 15px; margin: 20px 0; color: #856404; }
    .footer { text-align: center; margin-top: 30px; border-top: 1px solid #eee; color: #666; font-size: 14px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="logo">ChiroTrack</div>
    <h2 style="text-align:center">Password Reset Verification</h2>
    <p>Hello,</p>
    <p>We received a request to reset your password for your ChiroTrack account. To complete the password reset process, please use the verification code below:</p>
    <div class="otp-container">
      <p><strong>Your Verification Code:</strong></p>
      <div class="otp-code">{{.Code}}</div>
      <p><small>This code will expire in 3 minutes</small></p>
    </div>
    <div class="warning">
      <strong>Important Security Information:</strong>
      <ul>
        <li>This code is valid for 3 minutes only</li>
        <li>You have 3 attempts to enter the correct code</li>
        <li>If you didn't request this password reset, please ignore this email</li>
        <li>Never share this code with anyone</li>
      </ul>
    </div>
    <p>If you didn't request a password reset, please contact our support team immediately.</p>
    <div class="footer">
      <p>This email was sent from ChiroTrack - Your Chiropractic Practice Management System</p>
      <p>&copy; {{.Year}} ChiroTrack. All rights reserved.</p>
    </div>
  </div>
</body>
</html>`))

// MailService consumes password-reset events and delivers the OTP mail
// over SMTP with STARTTLS.
type MailService struct {
	smtpHost     string
	smtpPort     int
	smtpUser     string
	smtpPassword string
	mailFrom     string
	mailFromName string
}

func NewMailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, mailFrom, mailFromName string) *MailService {
	return &MailService{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		mailFrom:     mailFrom,
		mailFromName: mailFromName,
	}
}

// HandleMessage dispatches a consumed broker message by event key.
func (s *MailService) HandleMessage(key, value []byte) error {
	switch string(key) {
	case dto.EventPasswordResetOTP:
		var ev dto.PasswordResetOTPEvent
		if err := json.Unmarshal(value, &ev); err != nil {
			return fmt.Errorf("decode %s event: %w", dto.EventPasswordResetOTP, err)
		}
		return s.SendPasswordResetOTP(ev.Email, ev.Code)
	default:
		log.Printf("[MAIL] unknown event key %q - skipped", string(key))
		return nil
	}
}

func (s *MailService) SendPasswordResetOTP(to, code string) error {
	if s.smtpUser == "" || s.smtpPassword == "" {
		// No SMTP credentials in local setups; log the code instead.
		log.Printf("[MAIL] smtp not configured, OTP for %s: %s", to, code)
		return nil
	}

	htmlBody, err := s.renderOTPTemplate(code)
	if err != nil {
		return err
	}

	fromHeader := fmt.Sprintf("%s <%s>", s.mailFromName, s.mailFrom)

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", otpSubject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n")

	log.Printf("[MAIL] smtp sending to=%s via=%s:%d", to, s.smtpHost, s.smtpPort)

	if err := s.sendSMTPWithTimeout(to, []byte(msg)); err != nil {
		return err
	}

	log.Printf("[MAIL] sent to=%s", to)
	return nil
}

func (s *MailService) renderOTPTemplate(code string) (string, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, map[string]any{
		"Code": code,
		"Year": time.Now().Year(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *MailService) sendSMTPWithTimeout(to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.smtpHost, s.smtpPort)

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	// Covers the whole SMTP conversation, not just the dial.
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.smtpHost)
	if err != nil {
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.smtpHost}); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	if err := c.Auth(auth); err != nil {
		return err
	}

	if err := c.Mail(s.mailFrom); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
