package common

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/http/middleware"
	"github.com/workhub/marketplace-backend/internal/pkg/apperror"
)

var errUserNotInContext = errors.New("пользователь не найден в контексте")

// CurrentUserID извлекает userID из контекста.
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, errUserNotInContext
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, errUserNotInContext
	}

	return userID, nil
}

// CurrentUserRole извлекает роль пользователя из контекста.
func CurrentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", errUserNotInContext
	}

	role, ok := raw.(string)
	if !ok {
		return "", errUserNotInContext
	}

	return role, nil
}

// Error отвечает клиенту ошибкой: AppError отдаётся со своим статусом
// и сообщением, остальное уходит в централизованный ErrorHandler.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}
	_ = c.Error(err)
}
