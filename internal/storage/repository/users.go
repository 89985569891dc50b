package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sudhanshuv1/invdues-reminder-sub000/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, name, google_id, password_hash, photo, send_reminders)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Name, user.GoogleID, user.PasswordHash, user.Photo,
		user.SendReminders).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var lastReminderSent sql.NullTime
	if err := row.Scan(&u.UID, &u.Email, &u.Name, &u.GoogleID, &u.PasswordHash,
		&u.Photo, &u.SendReminders, &lastReminderSent, &u.CreatedAt); err != nil {
		return nil, err
	}
	if lastReminderSent.Valid {
		u.LastReminderSent = &lastReminderSent.Time
	}
	return u, nil
}

const userColumns = `uid, email, name, google_id, password_hash, photo,
			      send_reminders, last_reminder_sent, created_at`

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, userUID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по его электронной почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateUserProfile обновляет имя и фотографию пользователя,
// возвращает количество изменённых строк.
func (s *Storage) UpdateUserProfile(ctx context.Context, userUID, name, photo string) (int, error) {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET name = $1, photo = $2
			  WHERE uid = $3`
	result, err := s.DB.ExecContext(ctx, query, name, photo, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateUserPassword обновляет хэш пароля пользователя.
func (s *Storage) UpdateUserPassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.UpdateUserPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, passwordHash, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSendReminders включает или выключает периодическую рассылку для пользователя.
func (s *Storage) SetSendReminders(ctx context.Context, userUID string, enabled bool) error {
	const op = "storage.SetSendReminders"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET send_reminders = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, enabled, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetLastReminderSent фиксирует время последнего запуска рассылки.
func (s *Storage) SetLastReminderSent(ctx context.Context, userUID string, at time.Time) error {
	const op = "storage.SetLastReminderSent"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET last_reminder_sent = $1
			  WHERE uid = $2`
	if _, err := s.DB.ExecContext(ctx, query, at, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListReminderUsers возвращает всех пользователей с включенной рассылкой.
func (s *Storage) ListReminderUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListReminderUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE send_reminders = true`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteUserCascade удаляет пользователя вместе со счетами, почтовой
// конфигурацией, подпиской и хуками в одной транзакции.
func (s *Storage) DeleteUserCascade(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUserCascade"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	statements := []string{
		`DELETE FROM invoices WHERE user_uid = $1`,
		`DELETE FROM mail_configs WHERE user_uid = $1`,
		`DELETE FROM subscriptions WHERE user_uid = $1`,
		`DELETE FROM webhook_subscriptions WHERE user_uid = $1`,
		`DELETE FROM users WHERE uid = $1`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, userUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
