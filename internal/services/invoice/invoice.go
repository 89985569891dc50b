// Package invoice содержит бизнес-логику для управления счетами и их кешированием.
package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// Repository определяет методы для работы со счетами в хранилище.
type Repository interface {
	// CreateInvoice добавляет новый счет и возвращает его ID.
	CreateInvoice(ctx context.Context, invoice models.Invoice) (int, error)
	// ReadInvoice возвращает счет по ID в пределах счетов владельца.
	ReadInvoice(ctx context.Context, id int, userUID string) (*models.Invoice, error)
	// UpdateInvoice обновляет данные счета, возвращает количество изменённых записей.
	UpdateInvoice(ctx context.Context, req models.Invoice, id int, userUID string) (int, error)
	// RemoveInvoice удаляет счет, возвращает количество удалённых записей.
	RemoveInvoice(ctx context.Context, id int, userUID string) (int, error)
	// ListInvoices возвращает все счета пользователя.
	ListInvoices(ctx context.Context, userUID string) ([]*models.Invoice, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service реализует бизнес-логику работы со счетами, включая кеширование.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func cacheKey(userUID string, id int) string {
	return fmt.Sprintf("invoice:%s:%d", userUID, id)
}

// Create создает новый счет пользователя и возвращает его ID.
// Статус по умолчанию — unpaid.
func (s *Service) Create(ctx context.Context, userUID string, req models.DummyInvoice) (int, error) {
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return 0, fmt.Errorf("invalid due date: %w", err)
	}
	status := req.Status
	if status == "" {
		status = models.InvoiceStatusUnpaid
	}

	invoice := models.Invoice{
		UserUID:     userUID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Status:      status,
	}
	id, err := s.repo.CreateInvoice(ctx, invoice)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new invoice", slog.Int("id", id))
	return id, nil
}

// Read возвращает счет пользователя по ID, сперва заглядывая в кеш.
func (s *Service) Read(ctx context.Context, userUID string, id int) (*models.Invoice, error) {
	key := cacheKey(userUID, id)

	var cached models.Invoice
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.log.Warn("failed to read invoice cache", slog.String("key", key), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	invoice, err := s.repo.ReadInvoice(ctx, id, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, invoice, time.Hour); err != nil {
		s.log.Warn("failed to cache invoice", slog.String("key", key), slog.Any("err", err))
	}
	return invoice, nil
}

// Update обновляет счет пользователя и сбрасывает его кеш.
func (s *Service) Update(ctx context.Context, userUID string, id int, req models.DummyInvoice) (int, error) {
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return 0, fmt.Errorf("invalid due date: %w", err)
	}
	status := req.Status
	if status == "" {
		status = models.InvoiceStatusUnpaid
	}

	invoice := models.Invoice{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Status:      status,
	}
	count, err := s.repo.UpdateInvoice(ctx, invoice, id, userUID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx, cacheKey(userUID, id)); err != nil {
		s.log.Warn("failed to invalidate invoice cache", slog.Any("err", err))
	}
	return count, nil
}

// Remove удаляет счет пользователя и сбрасывает его кеш.
func (s *Service) Remove(ctx context.Context, userUID string, id int) (int, error) {
	count, err := s.repo.RemoveInvoice(ctx, id, userUID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(ctx, cacheKey(userUID, id)); err != nil {
		s.log.Warn("failed to invalidate invoice cache", slog.Any("err", err))
	}
	return count, nil
}

// List возвращает все счета пользователя.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Invoice, error) {
	return s.repo.ListInvoices(ctx, userUID)
}
