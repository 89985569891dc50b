package repository

import (
	"context"
	"fmt"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// CreateWebhookSubscription сохраняет подписку платформы автоматизации
// на события пользователя и возвращает её ID.
func (s *Storage) CreateWebhookSubscription(ctx context.Context, userUID, targetURL string) (int, error) {
	const op = "storage.CreateWebhookSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO webhook_subscriptions (user_uid, target_url)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID int
	if err := s.DB.QueryRowContext(ctx, query, userUID, targetURL).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListWebhookSubscriptions возвращает все подписки пользователя.
func (s *Storage) ListWebhookSubscriptions(ctx context.Context, userUID string) ([]*models.WebhookSubscription, error) {
	const op = "storage.ListWebhookSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, target_url, created_at
			  FROM webhook_subscriptions
			  WHERE user_uid = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.WebhookSubscription
	for rows.Next() {
		var item models.WebhookSubscription
		if err := rows.Scan(&item.ID, &item.UserUID, &item.TargetURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveWebhookSubscription удаляет подписку пользователя
// и возвращает количество удалённых строк.
func (s *Storage) RemoveWebhookSubscription(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveWebhookSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM webhook_subscriptions WHERE id = $1 AND user_uid = $2`
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
