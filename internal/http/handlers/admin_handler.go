package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/service"
)

// AdminHandler предоставляет операции модерации анкет фрилансеров.
type AdminHandler struct {
	freelancers *service.FreelancerService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(freelancers *service.FreelancerService) *AdminHandler {
	return &AdminHandler{freelancers: freelancers}
}

// ListModeration обрабатывает GET /admin/freelancers?status=pending_review.
func (h *AdminHandler) ListModeration(c *gin.Context) {
	status := c.DefaultQuery("status", models.ListingStatusPendingReview)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	profiles, err := h.freelancers.ListForModeration(c.Request.Context(), status, limit, offset)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"freelancers": profiles})
}

// Approve обрабатывает POST /admin/freelancers/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	freelancerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	if err := h.freelancers.Approve(c.Request.Context(), freelancerID); err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "анкета одобрена"})
}

// Reject обрабатывает POST /admin/freelancers/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	freelancerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.freelancers.Reject(c.Request.Context(), freelancerID, req.Reason); err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "анкета отклонена"})
}
