package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/service"
)

// FreelancerHandler предоставляет HTTP слой для анкеты, тарифов и
// требований фрилансера.
type FreelancerHandler struct {
	freelancers *service.FreelancerService
}

// NewFreelancerHandler создаёт хэндлер.
func NewFreelancerHandler(freelancers *service.FreelancerService) *FreelancerHandler {
	return &FreelancerHandler{freelancers: freelancers}
}

// GetMyProfile обрабатывает GET /freelancer/profile.
func (h *FreelancerHandler) GetMyProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.freelancers.GetProfile(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile обрабатывает PUT /freelancer/profile.
func (h *FreelancerHandler) UpdateMyProfile(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		DisplayName string     `json:"display_name" binding:"required"`
		Bio         *string    `json:"bio"`
		Skills      []string   `json:"skills"`
		Location    *string    `json:"location"`
		PhotoID     *uuid.UUID `json:"photo_id"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.freelancers.UpdateProfile(c.Request.Context(), userID, service.ProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Skills:      req.Skills,
		Location:    req.Location,
		PhotoID:     req.PhotoID,
	})
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateRequirements обрабатывает PUT /freelancer/requirements.
// Список вопросов заменяется целиком.
func (h *FreelancerHandler) UpdateRequirements(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Requirements models.RequirementList `json:"requirements"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.freelancers.UpdateRequirements(c.Request.Context(), userID, req.Requirements)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpsertRatePlan обрабатывает PUT /freelancer/plans.
func (h *FreelancerHandler) UpsertRatePlan(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		PlanType     string  `json:"plan_type" binding:"required"`
		Price        float64 `json:"price" binding:"required"`
		Description  *string `json:"description"`
		DeliveryDays *int    `json:"delivery_days"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.freelancers.UpsertRatePlan(c.Request.Context(), userID, service.RatePlanInput{
		PlanType:     req.PlanType,
		Price:        req.Price,
		Description:  req.Description,
		DeliveryDays: req.DeliveryDays,
	})
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ListMyRatePlans обрабатывает GET /freelancer/plans.
func (h *FreelancerHandler) ListMyRatePlans(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	plans, err := h.freelancers.ListRatePlans(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// DeleteRatePlan обрабатывает DELETE /freelancer/plans/:planType.
func (h *FreelancerHandler) DeleteRatePlan(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	if err := h.freelancers.DeleteRatePlan(c.Request.Context(), userID, c.Param("planType")); err != nil {
		common.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
