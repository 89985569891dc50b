package repository

import (
	"context"
	"fmt"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// UpsertMailConfig создает или заменяет почтовую конфигурацию пользователя.
// Уникальность по user_uid обеспечивается ограничением в базе.
func (s *Storage) UpsertMailConfig(ctx context.Context, cfg models.MailConfig) (int, error) {
	const op = "storage.UpsertMailConfig"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO mail_configs (user_uid, provider, refresh_token, access_token,
			      host, port, secure, username, password, is_configured,
			      use_custom_template, custom_subject, custom_content)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET provider = EXCLUDED.provider,
			      refresh_token = EXCLUDED.refresh_token,
			      access_token = EXCLUDED.access_token,
			      host = EXCLUDED.host,
			      port = EXCLUDED.port,
			      secure = EXCLUDED.secure,
			      username = EXCLUDED.username,
			      password = EXCLUDED.password,
			      is_configured = EXCLUDED.is_configured
			  RETURNING id`
	var id int
	err := s.DB.QueryRowContext(ctx, query,
		cfg.UserUID, cfg.Provider, cfg.RefreshToken, cfg.AccessToken,
		cfg.Host, cfg.Port, cfg.Secure, cfg.Username, cfg.Password, cfg.IsConfigured,
		cfg.UseCustomTemplate, cfg.CustomSubject, cfg.CustomContent).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetMailConfig возвращает почтовую конфигурацию пользователя.
func (s *Storage) GetMailConfig(ctx context.Context, userUID string) (*models.MailConfig, error) {
	const op = "storage.GetMailConfig"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, provider, refresh_token, access_token,
			      host, port, secure, username, password, is_configured,
			      use_custom_template, custom_subject, custom_content
			  FROM mail_configs
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var cfg models.MailConfig
	if err := row.Scan(&cfg.ID, &cfg.UserUID, &cfg.Provider, &cfg.RefreshToken, &cfg.AccessToken,
		&cfg.Host, &cfg.Port, &cfg.Secure, &cfg.Username, &cfg.Password, &cfg.IsConfigured,
		&cfg.UseCustomTemplate, &cfg.CustomSubject, &cfg.CustomContent); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// DeleteMailConfig удаляет почтовую конфигурацию пользователя
// и возвращает количество удалённых строк.
func (s *Storage) DeleteMailConfig(ctx context.Context, userUID string) (int, error) {
	const op = "storage.DeleteMailConfig"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM mail_configs WHERE user_uid = $1`
	result, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateEmailTemplate обновляет шаблон письма в конфигурации пользователя
// и возвращает количество изменённых строк.
func (s *Storage) UpdateEmailTemplate(ctx context.Context, userUID string, tmpl models.EmailTemplate) (int, error) {
	const op = "storage.UpdateEmailTemplate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE mail_configs
			  SET use_custom_template = $1, custom_subject = $2, custom_content = $3
			  WHERE user_uid = $4`
	result, err := s.DB.ExecContext(ctx, query,
		tmpl.UseCustomTemplate, tmpl.CustomSubject, tmpl.CustomContent, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
