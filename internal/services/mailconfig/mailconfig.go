// Package mailconfig содержит бизнес-логику почтовой конфигурации пользователя:
// сохранение и выдачу настроек, шаблон письма и построение готового
// транспорта для отправки.
package mailconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/secrets"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// ErrNotConfigured возвращается, когда у пользователя нет пригодной
// почтовой конфигурации.
var ErrNotConfigured = errors.New("mail is not configured")

// Repository описывает контракт хранилища почтовых конфигураций.
type Repository interface {
	UpsertMailConfig(ctx context.Context, cfg models.MailConfig) (int, error)
	GetMailConfig(ctx context.Context, userUID string) (*models.MailConfig, error)
	DeleteMailConfig(ctx context.Context, userUID string) (int, error)
	UpdateEmailTemplate(ctx context.Context, userUID string, tmpl models.EmailTemplate) (int, error)
}

// Service реализует операции над почтовой конфигурацией.
type Service struct {
	repo      Repository
	box       *secrets.Box
	exchanger TokenExchanger
	log       *slog.Logger
}

// New создает новый Service.
func New(repo Repository, box *secrets.Box, exchanger TokenExchanger, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		box:       box,
		exchanger: exchanger,
		log:       log,
	}
}

// SaveSMTP создает или заменяет SMTP-конфигурацию пользователя.
// Пароль шифруется перед сохранением.
func (s *Service) SaveSMTP(ctx context.Context, userUID string, req models.DummySMTPConfig) (int, error) {
	const op = "mailconfig.SaveSMTP"

	encrypted, err := s.box.Encrypt(req.Pass)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	cfg := models.MailConfig{
		UserUID:      userUID,
		Provider:     models.MailProviderSMTP,
		Host:         req.Host,
		Port:         req.Port,
		Secure:       req.Secure,
		Username:     req.User,
		Password:     encrypted,
		IsConfigured: true,
	}
	id, err := s.repo.UpsertMailConfig(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// SaveGmail создает или заменяет Gmail-конфигурацию пользователя
// на основе OAuth2 refresh-токена.
func (s *Service) SaveGmail(ctx context.Context, userUID string, req models.DummyGmailConfig) (int, error) {
	const op = "mailconfig.SaveGmail"

	cfg := models.MailConfig{
		UserUID:      userUID,
		Provider:     models.MailProviderGmail,
		RefreshToken: req.RefreshToken,
		Username:     req.User,
		IsConfigured: true,
	}
	id, err := s.repo.UpsertMailConfig(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// Get возвращает конфигурацию пользователя с вычищенными секретами.
func (s *Service) Get(ctx context.Context, userUID string) (*models.MailConfig, error) {
	cfg, err := s.repo.GetMailConfig(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	cfg.Password = ""
	cfg.RefreshToken = ""
	cfg.AccessToken = ""
	return cfg, nil
}

// Delete удаляет конфигурацию пользователя.
func (s *Service) Delete(ctx context.Context, userUID string) (int, error) {
	return s.repo.DeleteMailConfig(ctx, userUID)
}

// GetTemplate возвращает шаблон письма из конфигурации пользователя.
func (s *Service) GetTemplate(ctx context.Context, userUID string) (*models.EmailTemplate, error) {
	cfg, err := s.repo.GetMailConfig(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}
	return &cfg.EmailTemplate, nil
}

// UpdateTemplate обновляет шаблон письма в конфигурации пользователя.
func (s *Service) UpdateTemplate(ctx context.Context, userUID string, req models.DummyTemplate) (int, error) {
	tmpl := models.EmailTemplate{
		UseCustomTemplate: req.UseCustomTemplate,
		CustomSubject:     req.CustomSubject,
		CustomContent:     req.CustomContent,
	}
	count, err := s.repo.UpdateEmailTemplate(ctx, userUID, tmpl)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, ErrNotConfigured
	}
	return count, nil
}
