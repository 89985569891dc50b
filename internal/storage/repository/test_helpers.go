package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/migrations"
	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// setupTestDatabase поднимает контейнер PostgreSQL, применяет миграции
// и возвращает готовое хранилище с функцией очистки.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort(nat.Port("5432/tcp")),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2),
			).WithDeadline(3*time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(dsn)
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		if storage != nil && storage.DB != nil {
			_ = storage.DB.Close()
		}
		if pgContainer != nil {
			_ = pgContainer.Terminate(ctx)
		}
	}
	return storage, cleanup
}

// TestDataFactory содержит методы для создания тестовых данных.
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, email, name string) string {
	uid, err := f.storage.RegisterUser(context.Background(), models.User{
		Email:        email,
		Name:         name,
		PasswordHash: "hashedpassword",
	})
	require.NoError(t, err)
	return uid
}

// CreateInvoice создает тестовый счет и возвращает его ID.
func (f *TestDataFactory) CreateInvoice(t *testing.T, userUID, clientName string,
	amount float64, dueDate time.Time, status string) int {
	id, err := f.storage.CreateInvoice(context.Background(), models.Invoice{
		UserUID:     userUID,
		ClientName:  clientName,
		ClientEmail: "client@example.com",
		Amount:      amount,
		DueDate:     dueDate,
		Status:      status,
	})
	require.NoError(t, err)
	return id
}

// CreateTrialSubscription создает стартовую биллинговую запись пользователя.
func (f *TestDataFactory) CreateTrialSubscription(t *testing.T, userUID string, trialEnd time.Time) int {
	id, err := f.storage.CreateSubscription(context.Background(), models.Subscription{
		UserUID:      userUID,
		Plan:         models.PlanFree,
		Status:       models.SubscriptionStatusTrial,
		TrialEndDate: &trialEnd,
		Currency:     "INR",
		Interval:     "month",
	})
	require.NoError(t, err)
	return id
}
