package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// CreateInvoice вставляет новый счет и возвращает его ID.
func (s *Storage) CreateInvoice(ctx context.Context, invoice models.Invoice) (int, error) {
	const op = "storage.CreateInvoice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO invoices (user_uid, client_name, client_email, amount, due_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		invoice.UserUID, invoice.ClientName, invoice.ClientEmail, invoice.Amount,
		invoice.DueDate, invoice.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

const invoiceColumns = `id, user_uid, client_name, client_email, amount, due_date, status, created_at`

// ReadInvoice возвращает счет по ID, если он принадлежит пользователю.
func (s *Storage) ReadInvoice(ctx context.Context, id int, userUID string) (*models.Invoice, error) {
	const op = "storage.ReadInvoice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + invoiceColumns + `
			  FROM invoices WHERE id = $1 AND user_uid = $2`
	row := s.DB.QueryRowContext(ctx, query, id, userUID)

	var result models.Invoice
	if err := row.Scan(&result.ID, &result.UserUID, &result.ClientName, &result.ClientEmail,
		&result.Amount, &result.DueDate, &result.Status, &result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateInvoice обновляет данные счета и возвращает количество изменённых строк.
func (s *Storage) UpdateInvoice(ctx context.Context, req models.Invoice, id int, userUID string) (int, error) {
	const op = "storage.UpdateInvoice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE invoices
			  SET client_name = $1, client_email = $2, amount = $3, due_date = $4, status = $5
			  WHERE id = $6 AND user_uid = $7`
	result, err := s.DB.ExecContext(ctx, query,
		req.ClientName, req.ClientEmail, req.Amount, req.DueDate, req.Status, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveInvoice удаляет счет пользователя и возвращает количество удалённых строк.
func (s *Storage) RemoveInvoice(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveInvoice"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM invoices WHERE id = $1 AND user_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListInvoices возвращает все счета пользователя.
func (s *Storage) ListInvoices(ctx context.Context, userUID string) ([]*models.Invoice, error) {
	const op = "storage.ListInvoices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + invoiceColumns + `
			  FROM invoices
			  WHERE user_uid = $1
			  ORDER BY id`
	return s.queryInvoices(ctx, op, query, userUID)
}

// ListDueInvoices возвращает счета пользователя со сроком оплаты не позже now
// и статусом unpaid или overdue. Порядок результата не определён.
func (s *Storage) ListDueInvoices(ctx context.Context, userUID string, now time.Time) ([]*models.Invoice, error) {
	const op = "storage.ListDueInvoices"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + invoiceColumns + `
			  FROM invoices
			  WHERE user_uid = $1
			    AND due_date <= $2
			    AND status IN ('unpaid', 'overdue')`
	return s.queryInvoices(ctx, op, query, userUID, now)
}

func (s *Storage) queryInvoices(ctx context.Context, op, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Invoice
	for rows.Next() {
		var item models.Invoice
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ClientName, &item.ClientEmail,
			&item.Amount, &item.DueDate, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
