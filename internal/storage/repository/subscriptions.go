package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// CreateSubscription вставляет биллинговую запись пользователя и возвращает её ID.
// Вызывается один раз при регистрации.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, plan, status, trial_end_date,
			      amount, currency, billing_interval)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserUID, sub.Plan, sub.Status, sub.TrialEndDate,
		sub.Amount, sub.Currency, sub.Interval).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscription возвращает биллинговую запись пользователя.
func (s *Storage) GetSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan, status, current_period_start, current_period_end,
			      trial_end_date, gateway_order_id, gateway_payment_id,
			      gateway_subscription_id, amount, currency, billing_interval, created_at
			  FROM subscriptions
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var sub models.Subscription
	var periodStart, periodEnd, trialEnd sql.NullTime
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Plan, &sub.Status, &periodStart, &periodEnd,
		&trialEnd, &sub.GatewayOrderID, &sub.GatewayPaymentID,
		&sub.GatewaySubscriptionID, &sub.Amount, &sub.Currency, &sub.Interval, &sub.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if periodStart.Valid {
		sub.CurrentPeriodStart = &periodStart.Time
	}
	if periodEnd.Valid {
		sub.CurrentPeriodEnd = &periodEnd.Time
	}
	if trialEnd.Valid {
		sub.TrialEndDate = &trialEnd.Time
	}
	return &sub, nil
}

// SetGatewayOrder фиксирует созданный в шлюзе заказ до прихода оплаты.
func (s *Storage) SetGatewayOrder(ctx context.Context, userUID, orderID string, amount float64, currency string) error {
	const op = "storage.SetGatewayOrder"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET gateway_order_id = $1, amount = $2, currency = $3
			  WHERE user_uid = $4`
	if _, err := s.DB.ExecContext(ctx, query, orderID, amount, currency, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivateSubscription переводит подписку пользователя на оплаченный план.
func (s *Storage) ActivateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan = $1, status = $2, current_period_start = $3, current_period_end = $4,
			      gateway_payment_id = $5, gateway_subscription_id = $6,
			      amount = $7, currency = $8, billing_interval = $9
			  WHERE user_uid = $10`
	if _, err := s.DB.ExecContext(ctx, query,
		sub.Plan, sub.Status, sub.CurrentPeriodStart, sub.CurrentPeriodEnd,
		sub.GatewayPaymentID, sub.GatewaySubscriptionID,
		sub.Amount, sub.Currency, sub.Interval, sub.UserUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetGatewaySubscription фиксирует созданную в шлюзе рекуррентную подписку
// до прихода первого списания.
func (s *Storage) SetGatewaySubscription(ctx context.Context, userUID, gatewaySubscriptionID, plan, interval string) error {
	const op = "storage.SetGatewaySubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET gateway_subscription_id = $1, plan = $2, billing_interval = $3
			  WHERE user_uid = $4`
	if _, err := s.DB.ExecContext(ctx, query, gatewaySubscriptionID, plan, interval, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateStatusByGatewaySubscription обновляет статус подписки по идентификатору
// рекуррентной подписки в шлюзе, возвращает количество изменённых строк.
func (s *Storage) UpdateStatusByGatewaySubscription(ctx context.Context, gatewaySubscriptionID, status string) (int, error) {
	const op = "storage.UpdateStatusByGatewaySubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1
			  WHERE gateway_subscription_id = $2`
	result, err := s.DB.ExecContext(ctx, query, status, gatewaySubscriptionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ExpireSubscription возвращает подписку на бесплатный план со статусом expired.
// Вызывается при ленивой проверке истечения на чтении.
func (s *Storage) ExpireSubscription(ctx context.Context, userUID string) error {
	const op = "storage.ExpireSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET plan = $1, status = $2
			  WHERE user_uid = $3`
	if _, err := s.DB.ExecContext(ctx, query,
		models.PlanFree, models.SubscriptionStatusExpired, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
