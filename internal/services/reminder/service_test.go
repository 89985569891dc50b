package reminder

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/lib/mailer"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/services/mailconfig"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ListReminderUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) ListDueInvoices(ctx context.Context, userUID string, now time.Time) ([]*models.Invoice, error) {
	args := m.Called(ctx, userUID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Invoice), args.Error(1)
}
func (m *RepoMock) SetSendReminders(ctx context.Context, userUID string, enabled bool) error {
	return m.Called(ctx, userUID, enabled).Error(0)
}
func (m *RepoMock) SetLastReminderSent(ctx context.Context, userUID string, at time.Time) error {
	return m.Called(ctx, userUID, at).Error(0)
}
func (m *RepoMock) GetMailConfig(ctx context.Context, userUID string) (*models.MailConfig, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MailConfig), args.Error(1)
}
func (m *RepoMock) CreateWebhookSubscription(ctx context.Context, userUID, targetURL string) (int, error) {
	args := m.Called(ctx, userUID, targetURL)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListWebhookSubscriptions(ctx context.Context, userUID string) ([]*models.WebhookSubscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WebhookSubscription), args.Error(1)
}
func (m *RepoMock) RemoveWebhookSubscription(ctx context.Context, id int, userUID string) (int, error) {
	args := m.Called(ctx, id, userUID)
	return args.Int(0), args.Error(1)
}

type SenderMock struct{ mock.Mock }

func (m *SenderMock) Send(msg mailer.Message) error {
	return m.Called(msg).Error(0)
}

type ResolverMock struct{ mock.Mock }

func (m *ResolverMock) ResolveSender(ctx context.Context, userUID string) (mailer.Sender, string, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(mailer.Sender), args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const testUID = "b3c4ea08-7db5-4b6f-b9a0-1b90cbb0ea40"

func dueInvoices(n int) []*models.Invoice {
	res := make([]*models.Invoice, 0, n)
	for i := 1; i <= n; i++ {
		res = append(res, &models.Invoice{
			ID:          i,
			UserUID:     testUID,
			ClientName:  "Client",
			ClientEmail: "client@example.com",
			Amount:      100,
			DueDate:     time.Now().AddDate(0, 0, -i),
			Status:      models.InvoiceStatusUnpaid,
		})
	}
	return res
}

func TestSendImmediate_NoDueInvoices(t *testing.T) {
	repo := new(RepoMock)
	resolver := new(ResolverMock)
	repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID, Name: "Owner"}, nil)
	repo.On("GetMailConfig", mock.Anything, testUID).Return(&models.MailConfig{IsConfigured: true}, nil)
	repo.On("ListDueInvoices", mock.Anything, testUID, mock.Anything).Return([]*models.Invoice{}, nil)

	svc := New(repo, resolver, newNoopLogger(), "")
	result, err := svc.SendImmediate(context.Background(), testUID)

	assert.NoError(t, err)
	assert.Equal(t, Result{Count: 0, Total: 0}, result)
	repo.AssertNotCalled(t, "SetLastReminderSent", mock.Anything, mock.Anything, mock.Anything)
	resolver.AssertNotCalled(t, "ResolveSender", mock.Anything, mock.Anything)
}

func TestSendImmediate_RequiresMailConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  *models.MailConfig
		err  error
	}{
		{name: "no config row", cfg: nil, err: sql.ErrNoRows},
		{name: "config not usable", cfg: &models.MailConfig{IsConfigured: false}, err: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			resolver := new(ResolverMock)
			repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID}, nil)
			repo.On("GetMailConfig", mock.Anything, testUID).Return(tt.cfg, tt.err)

			svc := New(repo, resolver, newNoopLogger(), "")
			_, err := svc.SendImmediate(context.Background(), testUID)

			assert.ErrorIs(t, err, mailconfig.ErrNotConfigured)
			repo.AssertNotCalled(t, "ListDueInvoices", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStart_RequiresMailConfigEvenWithoutDueInvoices(t *testing.T) {
	repo := new(RepoMock)
	resolver := new(ResolverMock)
	repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID}, nil)
	repo.On("GetMailConfig", mock.Anything, testUID).Return(nil, sql.ErrNoRows)

	svc := New(repo, resolver, newNoopLogger(), "")
	_, err := svc.Start(context.Background(), testUID)

	assert.ErrorIs(t, err, mailconfig.ErrNotConfigured)
	repo.AssertNotCalled(t, "SetSendReminders", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendImmediate_PartialFailureContinues(t *testing.T) {
	repo := new(RepoMock)
	resolver := new(ResolverMock)
	sender := new(SenderMock)

	invoices := dueInvoices(3)
	repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID, Name: "Owner"}, nil)
	repo.On("ListDueInvoices", mock.Anything, testUID, mock.Anything).Return(invoices, nil)
	repo.On("GetMailConfig", mock.Anything, testUID).Return(&models.MailConfig{IsConfigured: true}, nil)
	repo.On("SetLastReminderSent", mock.Anything, testUID, mock.Anything).Return(nil)
	resolver.On("ResolveSender", mock.Anything, testUID).Return(sender, "owner@example.com", nil)

	// Второе письмо падает, остальные уходят.
	sender.On("Send", mock.Anything).Return(nil).Once()
	sender.On("Send", mock.Anything).Return(errors.New("smtp: connection reset")).Once()
	sender.On("Send", mock.Anything).Return(nil).Once()

	svc := New(repo, resolver, newNoopLogger(), "")
	result, err := svc.SendImmediate(context.Background(), testUID)

	assert.NoError(t, err)
	assert.Equal(t, Result{Count: 2, Total: 3}, result)
	sender.AssertNumberOfCalls(t, "Send", 3)
	repo.AssertCalled(t, "SetLastReminderSent", mock.Anything, testUID, mock.Anything)
}

func TestSendImmediate_ResolverErrorAbortsBatch(t *testing.T) {
	repo := new(RepoMock)
	resolver := new(ResolverMock)

	repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID}, nil)
	repo.On("ListDueInvoices", mock.Anything, testUID, mock.Anything).Return(dueInvoices(2), nil)
	repo.On("GetMailConfig", mock.Anything, testUID).Return(&models.MailConfig{IsConfigured: true}, nil)
	resolver.On("ResolveSender", mock.Anything, testUID).Return(nil, "", errors.New("failed to refresh gmail token"))

	svc := New(repo, resolver, newNoopLogger(), "")
	_, err := svc.SendImmediate(context.Background(), testUID)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "SetLastReminderSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestStart_FlagNotSetOnSendError(t *testing.T) {
	repo := new(RepoMock)
	resolver := new(ResolverMock)

	repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID}, nil)
	repo.On("GetMailConfig", mock.Anything, testUID).Return(&models.MailConfig{IsConfigured: true}, nil)
	repo.On("ListDueInvoices", mock.Anything, testUID, mock.Anything).Return(nil, errors.New("db down"))

	svc := New(repo, resolver, newNoopLogger(), "")
	_, err := svc.Start(context.Background(), testUID)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "SetSendReminders", mock.Anything, mock.Anything, mock.Anything)
}

func TestStart_EnablesFlagAfterSuccessfulSend(t *testing.T) {
	repo := new(RepoMock)
	resolver := new(ResolverMock)
	sender := new(SenderMock)

	repo.On("GetUser", mock.Anything, testUID).Return(&models.User{UID: testUID, Name: "Owner"}, nil)
	repo.On("ListDueInvoices", mock.Anything, testUID, mock.Anything).Return(dueInvoices(1), nil)
	repo.On("GetMailConfig", mock.Anything, testUID).Return(&models.MailConfig{IsConfigured: true}, nil)
	repo.On("SetLastReminderSent", mock.Anything, testUID, mock.Anything).Return(nil)
	repo.On("SetSendReminders", mock.Anything, testUID, true).Return(nil)
	resolver.On("ResolveSender", mock.Anything, testUID).Return(sender, "owner@example.com", nil)
	sender.On("Send", mock.Anything).Return(nil)

	svc := New(repo, resolver, newNoopLogger(), "")
	result, err := svc.Start(context.Background(), testUID)

	assert.NoError(t, err)
	assert.Equal(t, Result{Count: 1, Total: 1}, result)
	repo.AssertCalled(t, "SetSendReminders", mock.Anything, testUID, true)
}

func TestUntilNextRun(t *testing.T) {
	loc := time.UTC

	beforeHour := time.Date(2025, 5, 1, 6, 30, 0, 0, loc)
	assert.Equal(t, 90*time.Minute, untilNextRun(beforeHour, 8))

	afterHour := time.Date(2025, 5, 1, 9, 0, 0, 0, loc)
	assert.Equal(t, 23*time.Hour, untilNextRun(afterHour, 8))
}
