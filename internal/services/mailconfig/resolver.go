package mailconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/mailer"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// TokenExchanger обменивает refresh-токен Gmail на свежий access-токен.
type TokenExchanger interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// ResolveSender строит готовый к использованию транспорт по конфигурации
// пользователя и возвращает его вместе с адресом отправителя.
//
// Для провайдера gmail refresh-токен обменивается на свежий access-токен,
// для smtp расшифровывается сохранённый пароль. Ошибки обмена токена,
// расшифровки или построения транспорта оборачиваются с контекстом.
// Повторных попыток нет: за ретраи отдельных отправок отвечает вызывающий.
func (s *Service) ResolveSender(ctx context.Context, userUID string) (mailer.Sender, string, error) {
	const op = "mailconfig.ResolveSender"

	cfg, err := s.repo.GetMailConfig(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotConfigured
		}
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	if !cfg.IsConfigured {
		return nil, "", ErrNotConfigured
	}

	if cfg.Provider == models.MailProviderGmail {
		accessToken, err := s.exchanger.RefreshAccessToken(ctx, cfg.RefreshToken)
		if err != nil {
			return nil, "", fmt.Errorf("%s: failed to refresh gmail token: %w", op, err)
		}
		return mailer.NewGmailSender(s.log, cfg.Username, accessToken), cfg.Username, nil
	}

	pass, err := s.box.Decrypt(cfg.Password)
	if err != nil {
		return nil, "", fmt.Errorf("%s: failed to decrypt smtp password: %w", op, err)
	}
	sender := mailer.NewSMTPSender(s.log, cfg.Host, cfg.Port, cfg.Secure, cfg.Username, pass)
	return sender, cfg.Username, nil
}
