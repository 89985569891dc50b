package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

func TestUsers(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "alice@example.com", "Alice")

	user, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.False(t, user.SendReminders)
	assert.Nil(t, user.LastReminderSent)

	byEmail, err := storage.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, uid, byEmail.UID)

	count, err := storage.UpdateUserProfile(ctx, uid, "Alice B", "https://cdn.example.com/p.png")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, storage.SetSendReminders(ctx, uid, true))
	sentAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, storage.SetLastReminderSent(ctx, uid, sentAt))

	reminderUsers, err := storage.ListReminderUsers(ctx)
	require.NoError(t, err)
	require.Len(t, reminderUsers, 1)
	assert.Equal(t, uid, reminderUsers[0].UID)
	require.NotNil(t, reminderUsers[0].LastReminderSent)
	assert.WithinDuration(t, sentAt, *reminderUsers[0].LastReminderSent, time.Second)
}

func TestInvoices(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "bob@example.com", "Bob")
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	id := factory.CreateInvoice(t, uid, "Acme Corp", 1500, due, models.InvoiceStatusUnpaid)

	invoice, err := storage.ReadInvoice(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", invoice.ClientName)
	assert.Equal(t, float64(1500), invoice.Amount)

	// Счет не виден чужому пользователю.
	other := factory.CreateUser(t, "eve@example.com", "Eve")
	_, err = storage.ReadInvoice(ctx, id, other)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	invoice.Status = models.InvoiceStatusPaid
	count, err := storage.UpdateInvoice(ctx, *invoice, id, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	all, err := storage.ListInvoices(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	count, err = storage.RemoveInvoice(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = storage.ReadInvoice(ctx, id, uid)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListDueInvoices(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "carol@example.com", "Carol")
	now := time.Now().UTC()

	overdueID := factory.CreateInvoice(t, uid, "Overdue Ltd", 100, now.AddDate(0, 0, -3), models.InvoiceStatusOverdue)
	dueTodayID := factory.CreateInvoice(t, uid, "Due Today", 200, now.Add(-time.Hour), models.InvoiceStatusUnpaid)
	factory.CreateInvoice(t, uid, "Paid Client", 300, now.AddDate(0, 0, -5), models.InvoiceStatusPaid)
	factory.CreateInvoice(t, uid, "Future Client", 400, now.AddDate(0, 0, 7), models.InvoiceStatusUnpaid)

	due, err := storage.ListDueInvoices(ctx, uid, now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	ids := []int{due[0].ID, due[1].ID}
	assert.Contains(t, ids, overdueID)
	assert.Contains(t, ids, dueTodayID)
}

func TestMailConfigs(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "dave@example.com", "Dave")

	_, err := storage.GetMailConfig(ctx, uid)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = storage.UpsertMailConfig(ctx, models.MailConfig{
		UserUID:      uid,
		Provider:     models.MailProviderSMTP,
		Host:         "smtp.example.com",
		Port:         587,
		Username:     "dave@example.com",
		Password:     "encrypted",
		IsConfigured: true,
	})
	require.NoError(t, err)

	cfg, err := storage.GetMailConfig(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", cfg.Host)
	assert.False(t, cfg.UseCustomTemplate)

	// Повторный upsert заменяет конфигурацию, не создавая вторую строку.
	_, err = storage.UpsertMailConfig(ctx, models.MailConfig{
		UserUID:      uid,
		Provider:     models.MailProviderGmail,
		RefreshToken: "encrypted-refresh",
		IsConfigured: true,
	})
	require.NoError(t, err)

	cfg, err = storage.GetMailConfig(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.MailProviderGmail, cfg.Provider)
	assert.Empty(t, cfg.Host)

	count, err := storage.UpdateEmailTemplate(ctx, uid, models.EmailTemplate{
		UseCustomTemplate: true,
		CustomSubject:     "Invoice {{invoiceNumber}}",
		CustomContent:     "Dear {{clientName}}, pay {{amount}} by {{dueDate}}.",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	cfg, err = storage.GetMailConfig(ctx, uid)
	require.NoError(t, err)
	assert.True(t, cfg.UseCustomTemplate)
	assert.Equal(t, "Invoice {{invoiceNumber}}", cfg.CustomSubject)

	count, err = storage.DeleteMailConfig(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubscriptionLifecycle(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "frank@example.com", "Frank")
	factory.CreateTrialSubscription(t, uid, time.Now().UTC().AddDate(0, 1, 0))

	sub, err := storage.GetSubscription(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
	require.NotNil(t, sub.TrialEndDate)

	require.NoError(t, storage.SetGatewayOrder(ctx, uid, "order_1", 499, "INR"))

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)
	require.NoError(t, storage.ActivateSubscription(ctx, models.Subscription{
		UserUID:               uid,
		Plan:                  models.PlanPro,
		Status:                models.SubscriptionStatusActive,
		CurrentPeriodStart:    &now,
		CurrentPeriodEnd:      &periodEnd,
		GatewayPaymentID:      "pay_1",
		GatewaySubscriptionID: "sub_gw_1",
		Amount:                499,
		Currency:              "INR",
		Interval:              "month",
	}))

	sub, err = storage.GetSubscription(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "order_1", sub.GatewayOrderID)
	assert.Equal(t, "pay_1", sub.GatewayPaymentID)

	count, err := storage.UpdateStatusByGatewaySubscription(ctx, "sub_gw_1", models.SubscriptionStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = storage.UpdateStatusByGatewaySubscription(ctx, "sub_gw_unknown", models.SubscriptionStatusActive)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, storage.ExpireSubscription(ctx, uid))
	sub, err = storage.GetSubscription(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, sub.Plan)
	assert.Equal(t, models.SubscriptionStatusExpired, sub.Status)
}

func TestWebhookSubscriptions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "grace@example.com", "Grace")

	id, err := storage.CreateWebhookSubscription(ctx, uid, "https://hooks.example.com/a")
	require.NoError(t, err)

	subs, err := storage.ListWebhookSubscriptions(ctx, uid)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "https://hooks.example.com/a", subs[0].TargetURL)

	// Чужой пользователь не может удалить подписку.
	other := factory.CreateUser(t, "heidi@example.com", "Heidi")
	count, err := storage.RemoveWebhookSubscription(ctx, id, other)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = storage.RemoveWebhookSubscription(ctx, id, uid)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteUserCascade(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	uid := factory.CreateUser(t, "ivan@example.com", "Ivan")
	factory.CreateTrialSubscription(t, uid, time.Now().UTC().AddDate(0, 1, 0))
	factory.CreateInvoice(t, uid, "Acme Corp", 1500, time.Now().UTC(), models.InvoiceStatusUnpaid)
	_, err := storage.UpsertMailConfig(ctx, models.MailConfig{
		UserUID: uid, Provider: models.MailProviderSMTP, IsConfigured: true,
	})
	require.NoError(t, err)
	_, err = storage.CreateWebhookSubscription(ctx, uid, "https://hooks.example.com/b")
	require.NoError(t, err)

	require.NoError(t, storage.DeleteUserCascade(ctx, uid))

	_, err = storage.GetUser(ctx, uid)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	invoices, err := storage.ListInvoices(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, invoices)
	_, err = storage.GetSubscription(ctx, uid)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCheckDatabaseReady(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	assert.NoError(t, storage.CheckDatabaseReady(context.Background()))
}
