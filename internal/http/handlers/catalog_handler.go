package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/repository"
	"github.com/workhub/marketplace-backend/internal/service"
)

// CatalogHandler предоставляет публичный каталог фрилансеров.
type CatalogHandler struct {
	freelancers *service.FreelancerService
	orders      *service.OrderService
}

// NewCatalogHandler создаёт хэндлер.
func NewCatalogHandler(freelancers *service.FreelancerService, orders *service.OrderService) *CatalogHandler {
	return &CatalogHandler{freelancers: freelancers, orders: orders}
}

// Search обрабатывает GET /catalog/freelancers.
// Параметры: search, skills (через запятую), limit, offset.
func (h *CatalogHandler) Search(c *gin.Context) {
	params := repository.SearchParams{
		Search: strings.TrimSpace(c.Query("search")),
	}

	if raw := c.Query("skills"); raw != "" {
		for _, skill := range strings.Split(raw, ",") {
			if skill = strings.TrimSpace(skill); skill != "" {
				params.Skills = append(params.Skills, skill)
			}
		}
	}

	params.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	params.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	result, err := h.freelancers.Search(c.Request.Context(), params)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetFreelancer обрабатывает GET /catalog/freelancers/:id.
// Отдаёт только одобренные анкеты вместе с тарифами.
func (h *CatalogHandler) GetFreelancer(c *gin.Context) {
	freelancerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	profile, err := h.freelancers.GetPublicProfile(c.Request.Context(), freelancerID)
	if err != nil {
		common.Error(c, err)
		return
	}

	plans, err := h.freelancers.ListRatePlans(c.Request.Context(), freelancerID)
	if err != nil {
		common.Error(c, err)
		return
	}

	completed, err := h.orders.CompletedCount(c.Request.Context(), freelancerID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":          profile,
		"plans":            plans,
		"completed_orders": completed,
	})
}
