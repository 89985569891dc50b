// Package mailer реализует отправку писем через SMTP.
//
// Sender — единая способность "отправить письмо", за которой стоят два
// варианта транспорта: SMTPSender (логин и пароль пользователя) и
// GmailSender (OAuth2 access-токен, механизм XOAUTH2).
package mailer

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
)

// Message описывает письмо с HTML-содержимым.
type Message struct {
	From    string // Адрес отправителя
	To      string // Адрес получателя
	Subject string // Тема письма
	HTML    string // Тело письма в HTML
}

// Sender интерфейс транспорта для отправки писем.
type Sender interface {
	Send(msg Message) error
}

func buildMessage(msg Message) string {
	return strings.Join([]string{
		"From: " + msg.From,
		"To: " + msg.To,
		"Subject: " + msg.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"",
		msg.HTML,
	}, "\r\n")
}

func transmit(client *smtp.Client, msg Message, log *slog.Logger) error {
	if err := client.Mail(msg.From); err != nil {
		log.Error("failed to set MAIL FROM", "from", msg.From, sl.Err(err))
		return fmt.Errorf("failed to set MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		log.Error("failed to set RCPT TO", "recipient", msg.To, sl.Err(err))
		return fmt.Errorf("failed to set RCPT TO: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		log.Error("failed to get data writer", sl.Err(err))
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = wc.Write([]byte(buildMessage(msg))); err != nil {
		log.Error("failed to write email body", sl.Err(err))
		return fmt.Errorf("failed to write email body: %w", err)
	}
	if err = wc.Close(); err != nil {
		log.Error("failed to close data writer", sl.Err(err))
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	if err = client.Quit(); err != nil {
		log.Error("failed to quit smtp client", sl.Err(err))
		return fmt.Errorf("failed to quit smtp client: %w", err)
	}

	log.Info("email sent", "to", msg.To)
	return nil
}

// SMTPSender отправляет письма через пользовательский SMTP-сервер
// с аутентификацией по паролю.
type SMTPSender struct {
	host         string
	port         int
	secure       bool // true — implicit TLS (обычно порт 465), иначе STARTTLS
	username     string
	password     string
	gmailProfile bool // хост содержит "gmail": известный профиль Gmail SMTP
	log          *slog.Logger
}

// NewSMTPSender создает новый SMTPSender.
func NewSMTPSender(log *slog.Logger, host string, port int, secure bool, username, password string) *SMTPSender {
	return &SMTPSender{
		host:         host,
		port:         port,
		secure:       secure,
		username:     username,
		password:     password,
		gmailProfile: strings.Contains(strings.ToLower(host), "gmail"),
		log:          log,
	}
}

// IsGmailProfile сообщает, распознан ли хост как SMTP-сервер Gmail.
func (s *SMTPSender) IsGmailProfile() bool {
	return s.gmailProfile
}

func (s *SMTPSender) connect() (*smtp.Client, error) {
	addr := s.host + ":" + strconv.Itoa(s.port)
	tlsConfig := &tls.Config{
		ServerName: s.host,
		MinVersion: tls.VersionTLS12,
	}

	if s.secure {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			s.log.Error("failed to dial SMTP server over TLS", sl.Err(err))
			return nil, fmt.Errorf("failed to dial SMTP server over TLS: %w", err)
		}
		client, err := smtp.NewClient(conn, s.host)
		if err != nil {
			s.log.Error("failed to create SMTP client", sl.Err(err))
			if closeErr := conn.Close(); closeErr != nil {
				s.log.Error("failed to close connection", sl.Err(closeErr))
			}
			return nil, fmt.Errorf("failed to create SMTP client: %w", err)
		}
		return client, nil
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		s.log.Error("failed to dial SMTP server", sl.Err(err))
		return nil, fmt.Errorf("failed to dial SMTP server: %w", err)
	}
	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		s.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			s.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	ok, _ := client.Extension("STARTTLS")
	if !ok {
		s.log.Error("SMTP server does not support STARTTLS")
		if closeErr := client.Close(); closeErr != nil {
			s.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("smtp server does not support STARTTLS")
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		s.log.Error("failed to start TLS", sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			s.log.Error("failed to close client", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("failed to start TLS: %w", err)
	}
	return client, nil
}

// Send отправляет письмо через SMTP с PLAIN-аутентификацией.
func (s *SMTPSender) Send(msg Message) error {
	client, err := s.connect()
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := client.Auth(auth); err != nil {
		s.log.Error("smtp auth failed", sl.Err(err))
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	return transmit(client, msg, s.log)
}

const (
	gmailHost = "smtp.gmail.com"
	gmailPort = 587
)

// GmailSender отправляет письма через smtp.gmail.com с OAuth2-аутентификацией.
type GmailSender struct {
	username    string // Адрес аккаунта Gmail
	accessToken string // Свежий access-токен
	log         *slog.Logger
}

// NewGmailSender создает новый GmailSender.
func NewGmailSender(log *slog.Logger, username, accessToken string) *GmailSender {
	return &GmailSender{
		username:    username,
		accessToken: accessToken,
		log:         log,
	}
}

// Send отправляет письмо через Gmail SMTP с механизмом XOAUTH2.
func (g *GmailSender) Send(msg Message) error {
	addr := gmailHost + ":" + strconv.Itoa(gmailPort)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		g.log.Error("failed to dial gmail SMTP server", sl.Err(err))
		return fmt.Errorf("failed to dial gmail SMTP server: %w", err)
	}
	client, err := smtp.NewClient(conn, gmailHost)
	if err != nil {
		g.log.Error("failed to create SMTP client", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			g.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	tlsConfig := &tls.Config{
		ServerName: gmailHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		g.log.Error("failed to start TLS", sl.Err(err))
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err = client.Auth(xoauth2Auth{username: g.username, accessToken: g.accessToken}); err != nil {
		g.log.Error("gmail xoauth2 auth failed", sl.Err(err))
		return fmt.Errorf("gmail xoauth2 auth failed: %w", err)
	}

	return transmit(client, msg, g.log)
}

// xoauth2Auth реализует smtp.Auth для механизма SASL XOAUTH2.
type xoauth2Auth struct {
	username    string
	accessToken string
}

func (a xoauth2Auth) Start(_ *smtp.ServerInfo) (string, []byte, error) {
	resp := "user=" + a.username + "\x01auth=Bearer " + a.accessToken + "\x01\x01"
	return "XOAUTH2", []byte(resp), nil
}

func (a xoauth2Auth) Next(_ []byte, more bool) ([]byte, error) {
	// Сервер присылает challenge только при ошибке; отвечаем пустой строкой.
	if more {
		return []byte{}, nil
	}
	return nil, nil
}
