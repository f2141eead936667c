package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/workhub/marketplace-backend/internal/models"
)

// ErrNotificationNotFound возвращается, когда уведомление не найдено.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository отвечает за сохранённые уведомления пользователей.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт экземпляр репозитория.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление.
func (r *NotificationRepository) Create(ctx context.Context, userID uuid.UUID, event string, payload interface{}) (*models.Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notification repository: marshal payload %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Event:   event,
		Payload: raw,
	}

	query := `
		INSERT INTO notifications (user_id, event, payload)
		VALUES ($1, $2, $3)
		RETURNING id, is_read, created_at
	`
	if err := r.db.QueryRowxContext(ctx, query, userID, event, raw).
		Scan(&notification.ID, &notification.IsRead, &notification.CreatedAt); err != nil {
		return nil, fmt.Errorf("notification repository: create %w", err)
	}

	return notification, nil
}

// List возвращает уведомления пользователя, новые первыми.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := `
		SELECT id, user_id, event, payload, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("notification repository: list %w", err)
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("notification repository: count unread %w", err)
	}
	return count, nil
}

// MarkAsRead помечает уведомление прочитанным, проверяя владельца.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("notification repository: mark as read %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("notification repository: rows affected %w", err)
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("notification repository: mark all as read %w", err)
	}
	return nil
}

// GetByID возвращает уведомление, проверяя владельца.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	query := `
		SELECT id, user_id, event, payload, is_read, created_at
		FROM notifications
		WHERE id = $1 AND user_id = $2
	`
	if err := r.db.GetContext(ctx, &notification, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("notification repository: get by id %w", err)
	}

	return &notification, nil
}
