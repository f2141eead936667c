package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/service"
)

// OrderHandler предоставляет HTTP слой заказов со стороны клиента:
// создание, оплата, ответы на бриф, собственные списки.
type OrderHandler struct {
	orders *service.OrderService
	users  *service.AuthService
}

// NewOrderHandler создаёт хэндлер.
func NewOrderHandler(orders *service.OrderService, users *service.AuthService) *OrderHandler {
	return &OrderHandler{orders: orders, users: users}
}

// Create обрабатывает POST /orders.
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		FreelancerID uuid.UUID `json:"freelancer_id" binding:"required"`
		PlanType     string    `json:"plan_type" binding:"required"`
		ClientEmail  string    `json:"client_email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actorEmail := req.ClientEmail
	if actorEmail == "" {
		if user, err := h.users.Me(c.Request.Context(), userID); err == nil {
			actorEmail = user.Email
		}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), userID, actorEmail, service.CreateOrderInput{
		FreelancerID: req.FreelancerID,
		PlanType:     req.PlanType,
		ClientEmail:  req.ClientEmail,
	})
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// CapturePayment обрабатывает POST /orders/:id/pay.
func (h *OrderHandler) CapturePayment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	result, err := h.orders.CapturePayment(c.Request.Context(), userID, orderID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAnswers обрабатывает PUT /orders/:id/answers.
func (h *OrderHandler) SubmitAnswers(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	var req struct {
		Answers []models.RequirementAnswer `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.SubmitAnswers(c.Request.Context(), userID, orderID, req.Answers)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// List обрабатывает GET /orders - заказы текущего клиента.
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.orders.ListForClient(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get обрабатывает GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	order, err := h.orders.GetForClient(c.Request.Context(), userID, orderID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ActiveOrder обрабатывает GET /orders/active/:freelancerId - последний
// pending заказ у заданного фрилансера.
func (h *OrderHandler) ActiveOrder(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	freelancerID, err := uuid.Parse(c.Param("freelancerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return
	}

	order, err := h.orders.ActiveOrder(c.Request.Context(), userID, freelancerID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
