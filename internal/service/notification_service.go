package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/models"
)

// NotificationStore описывает хранилище уведомлений.
type NotificationStore interface {
	Create(ctx context.Context, userID uuid.UUID, event string, payload interface{}) (*models.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

// NotificationService управляет сохранёнными уведомлениями пользователей.
type NotificationService struct {
	repo NotificationStore
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// SaveNotification сохраняет событие, отправленное через WebSocket.
// Реализует интерфейс ws.NotificationSaver.
func (s *NotificationService) SaveNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	_, err := s.repo.Create(ctx, userID, event, data)
	return err
}

// List возвращает уведомления пользователя с пагинацией.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, userID, limit, offset)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkAsRead помечает уведомление прочитанным.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, id, userID)
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
