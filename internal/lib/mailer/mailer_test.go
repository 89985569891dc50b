package mailer

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage(t *testing.T) {
	msg := Message{
		From:    "sender@example.com",
		To:      "client@example.com",
		Subject: "Payment Reminder: Invoice #42",
		HTML:    "<p>Hello</p>",
	}

	raw := buildMessage(msg)

	assert.Contains(t, raw, "From: sender@example.com\r\n")
	assert.Contains(t, raw, "To: client@example.com\r\n")
	assert.Contains(t, raw, "Subject: Payment Reminder: Invoice #42\r\n")
	assert.Contains(t, raw, "Content-Type: text/html; charset=\"UTF-8\"\r\n")
	assert.Contains(t, raw, "\r\n\r\n<p>Hello</p>")
}

func TestNewSMTPSender_GmailProfile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name string
		host string
		want bool
	}{
		{name: "gmail host", host: "smtp.gmail.com", want: true},
		{name: "gmail host uppercase", host: "SMTP.GMAIL.COM", want: true},
		{name: "other host", host: "mail.example.com", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSMTPSender(logger, tt.host, 587, false, "user@example.com", "pass")
			assert.Equal(t, tt.want, s.IsGmailProfile())
		})
	}
}

func TestXOAuth2Auth_Start(t *testing.T) {
	auth := xoauth2Auth{username: "user@gmail.com", accessToken: "ya29.token"}

	proto, resp, err := auth.Start(nil)
	assert.NoError(t, err)
	assert.Equal(t, "XOAUTH2", proto)
	assert.Equal(t, "user=user@gmail.com\x01auth=Bearer ya29.token\x01\x01", string(resp))
}
