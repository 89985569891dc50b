package reminder

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/mailer"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/sl"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/mailconfig"
)

// Repository описывает контракт хранилища для диспетчера напоминаний.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListReminderUsers(ctx context.Context) ([]*models.User, error)
	ListDueInvoices(ctx context.Context, userUID string, now time.Time) ([]*models.Invoice, error)
	SetSendReminders(ctx context.Context, userUID string, enabled bool) error
	SetLastReminderSent(ctx context.Context, userUID string, at time.Time) error
	GetMailConfig(ctx context.Context, userUID string) (*models.MailConfig, error)
	CreateWebhookSubscription(ctx context.Context, userUID, targetURL string) (int, error)
	ListWebhookSubscriptions(ctx context.Context, userUID string) ([]*models.WebhookSubscription, error)
	RemoveWebhookSubscription(ctx context.Context, id int, userUID string) (int, error)
}

// TransportResolver строит готовый транспорт по конфигурации пользователя.
type TransportResolver interface {
	ResolveSender(ctx context.Context, userUID string) (mailer.Sender, string, error)
}

// Service — диспетчер напоминаний: выбор просроченных счетов,
// рендеринг и отправка, учёт времени последнего запуска.
type Service struct {
	repo               Repository
	resolver           TransportResolver
	log                *slog.Logger
	httpClient         *http.Client
	fallbackWebhookURL string
}

// New создает новый Service. fallbackWebhookURL используется для внешних
// уведомлений, когда у пользователя нет сохранённых подписок-хуков.
func New(repo Repository, resolver TransportResolver, log *slog.Logger, fallbackWebhookURL string) *Service {
	return &Service{
		repo:               repo,
		resolver:           resolver,
		log:                log,
		httpClient:         &http.Client{Timeout: 10 * time.Second},
		fallbackWebhookURL: fallbackWebhookURL,
	}
}

// Result — итог немедленной рассылки: сколько отправлено и сколько найдено.
type Result struct {
	Count int `json:"count"`
	Total int `json:"total"`
}

// Status — состояние напоминаний пользователя.
type Status struct {
	IsActive         bool       `json:"is_active"`
	LastReminderSent *time.Time `json:"last_reminder_sent"`
	MailConfigured   bool       `json:"mail_configured"`
}

// SendImmediate отправляет напоминания по всем просроченным счетам
// пользователя. Настроенная почта — предусловие: без неё возвращается
// ErrNotConfigured даже при нуле счетов. Ноль счетов при настроенной
// почте — не ошибка, а успешный пустой результат.
// Транспорт строится один раз до цикла: его ошибка прерывает всю партию.
// Ошибка отправки одного письма логируется и не прерывает остальные.
func (s *Service) SendImmediate(ctx context.Context, userUID string) (Result, error) {
	const op = "reminder.SendImmediate"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	cfg, err := s.repo.GetMailConfig(ctx, userUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, mailconfig.ErrNotConfigured
		}
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if !cfg.IsConfigured {
		return Result{}, mailconfig.ErrNotConfigured
	}

	now := time.Now()
	invoices, err := s.repo.ListDueInvoices(ctx, userUID, now)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(invoices) == 0 {
		log.Info("no due invoices found")
		return Result{Count: 0, Total: 0}, nil
	}

	sender, from, err := s.resolver.ResolveSender(ctx, userUID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}

	sent := 0
	for _, invoice := range invoices {
		rendered := RenderReminder(cfg.EmailTemplate, *invoice, *user, now)
		msg := mailer.Message{
			From:    from,
			To:      invoice.ClientEmail,
			Subject: rendered.Subject,
			HTML:    rendered.Content,
		}
		if err := sender.Send(msg); err != nil {
			log.Error("failed to send reminder",
				slog.Int("invoice_id", invoice.ID), sl.Err(err))
			continue
		}
		sent++
	}

	if err := s.repo.SetLastReminderSent(ctx, userUID, now); err != nil {
		log.Error("failed to update last reminder sent", sl.Err(err))
	}

	log.Info("reminders dispatched", slog.Int("sent", sent), slog.Int("total", len(invoices)))
	return Result{Count: sent, Total: len(invoices)}, nil
}

// Start выполняет немедленную рассылку и включает периодические напоминания.
// Ошибка рассылки прерывает запуск: флаг не устанавливается.
func (s *Service) Start(ctx context.Context, userUID string) (Result, error) {
	const op = "reminder.Start"

	result, err := s.SendImmediate(ctx, userUID)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.SetSendReminders(ctx, userUID, true); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Stop выключает периодические напоминания.
func (s *Service) Stop(ctx context.Context, userUID string) error {
	const op = "reminder.Stop"
	if err := s.repo.SetSendReminders(ctx, userUID, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetStatus возвращает текущее состояние напоминаний пользователя.
func (s *Service) GetStatus(ctx context.Context, userUID string) (*Status, error) {
	const op = "reminder.GetStatus"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	configured := false
	cfg, err := s.repo.GetMailConfig(ctx, userUID)
	if err == nil {
		configured = cfg.IsConfigured
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Status{
		IsActive:         user.SendReminders,
		LastReminderSent: user.LastReminderSent,
		MailConfigured:   configured,
	}, nil
}

// RunDailySweep обходит всех пользователей с включенными напоминаниями.
// Ошибка одного пользователя изолируется и не прерывает обход остальных.
func (s *Service) RunDailySweep(ctx context.Context) {
	const op = "reminder.RunDailySweep"
	log := s.log.With(slog.String("op", op))
	log.Info("starting daily reminder sweep")

	users, err := s.repo.ListReminderUsers(ctx)
	if err != nil {
		log.Error("failed to list reminder users", sl.Err(err))
		return
	}
	if len(users) == 0 {
		log.Info("no users with reminders enabled")
		return
	}

	for _, user := range users {
		result, err := s.SendImmediate(ctx, user.UID)
		if err != nil {
			if errors.Is(err, mailconfig.ErrNotConfigured) {
				log.Info("skipping user without mail configuration",
					slog.String("user_uid", user.UID))
				continue
			}
			log.Error("sweep failed for user",
				slog.String("user_uid", user.UID), sl.Err(err))
			continue
		}
		log.Info("sweep finished for user", slog.String("user_uid", user.UID),
			slog.Int("sent", result.Count), slog.Int("total", result.Total))
	}
	log.Info("daily reminder sweep finished", slog.Int("users", len(users)))
}

// PushPayload — структура уведомления для платформы автоматизации.
type PushPayload struct {
	Event    string                     `json:"event"`
	UserUID  string                     `json:"user_uid"`
	Message  string                     `json:"message"`
	Invoices []models.DueInvoiceSummary `json:"invoices"`
}

// PushDueInvoices отправляет сводку по просроченным счетам на webhook-адреса
// платформы автоматизации. Почтовый транспорт здесь не используется.
// Ошибки доставки логируются и не возвращаются вызывающему.
func (s *Service) PushDueInvoices(ctx context.Context, userUID string) {
	const op = "reminder.PushDueInvoices"
	log := s.log.With(slog.String("op", op), slog.String("user_uid", userUID))

	now := time.Now()
	invoices, err := s.repo.ListDueInvoices(ctx, userUID, now)
	if err != nil {
		log.Error("failed to list due invoices", sl.Err(err))
		return
	}

	summaries := make([]models.DueInvoiceSummary, 0, len(invoices))
	for _, invoice := range invoices {
		summaries = append(summaries, models.DueInvoiceSummary{
			InvoiceID:   invoice.ID,
			ClientName:  invoice.ClientName,
			Amount:      CurrencySymbol + formatAmount(invoice.Amount),
			DueDate:     formatDate(invoice.DueDate),
			Status:      invoice.Status,
			DaysOverdue: DaysOverdue(invoice.DueDate, now),
		})
	}

	payload := PushPayload{
		Event:    "invoice.reminders.due",
		UserUID:  userUID,
		Message:  "You have " + strconv.Itoa(len(summaries)) + " due invoice(s)",
		Invoices: summaries,
	}

	targets := s.pushTargets(ctx, userUID, log)
	for _, target := range targets {
		if err := s.postPayload(ctx, target, payload); err != nil {
			log.Error("failed to deliver webhook payload",
				slog.String("target", target), sl.Err(err))
			continue
		}
		log.Info("webhook payload delivered", slog.String("target", target))
	}
}

func (s *Service) pushTargets(ctx context.Context, userUID string, log *slog.Logger) []string {
	subs, err := s.repo.ListWebhookSubscriptions(ctx, userUID)
	if err != nil {
		log.Error("failed to list webhook subscriptions", sl.Err(err))
		subs = nil
	}
	if len(subs) == 0 {
		if s.fallbackWebhookURL == "" {
			return nil
		}
		return []string{s.fallbackWebhookURL}
	}
	targets := make([]string, 0, len(subs))
	for _, sub := range subs {
		targets = append(targets, sub.TargetURL)
	}
	return targets
}

func (s *Service) postPayload(ctx context.Context, target string, payload PushPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return errors.New("unexpected status: " + resp.Status)
	}
	return nil
}

// Subscribe сохраняет webhook-подписку платформы автоматизации и сразу
// отправляет на нее текущую сводку. Ошибка доставки не отменяет подписку.
func (s *Service) Subscribe(ctx context.Context, userUID, hookURL string) (int, error) {
	const op = "reminder.Subscribe"
	id, err := s.repo.CreateWebhookSubscription(ctx, userUID, hookURL)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.PushDueInvoices(ctx, userUID)
	return id, nil
}

// Unsubscribe удаляет webhook-подписку пользователя.
func (s *Service) Unsubscribe(ctx context.Context, id int, userUID string) (int, error) {
	const op = "reminder.Unsubscribe"
	count, err := s.repo.RemoveWebhookSubscription(ctx, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
