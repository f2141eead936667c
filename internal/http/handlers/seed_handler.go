package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/service"
)

// SeedHandler наполняет базу демо-данными. Маршрут подключается только
// вне production.
type SeedHandler struct {
	seed *service.SeedService
}

// NewSeedHandler создаёт хэндлер.
func NewSeedHandler(seed *service.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// Seed обрабатывает POST /dev/seed.
func (h *SeedHandler) Seed(c *gin.Context) {
	result, err := h.seed.Seed(c.Request.Context())
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
