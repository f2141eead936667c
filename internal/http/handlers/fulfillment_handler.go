package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/workhub/marketplace-backend/internal/http/handlers/common"
	"github.com/workhub/marketplace-backend/internal/models"
	"github.com/workhub/marketplace-backend/internal/service"
)

// FulfillmentHandler предоставляет HTTP слой заказов со стороны исполнителя:
// принятие, отклонение и сдача работы.
type FulfillmentHandler struct {
	orders *service.OrderService
}

// NewFulfillmentHandler создаёт хэндлер.
func NewFulfillmentHandler(orders *service.OrderService) *FulfillmentHandler {
	return &FulfillmentHandler{orders: orders}
}

// List обрабатывает GET /fulfillment/orders - заказы текущего исполнителя.
func (h *FulfillmentHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.orders.ListForFreelancer(c.Request.Context(), userID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// Get обрабатывает GET /fulfillment/orders/:id.
func (h *FulfillmentHandler) Get(c *gin.Context) {
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

	order, err := h.orders.GetForFreelancer(c.Request.Context(), userID, orderID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Accept обрабатывает POST /fulfillment/orders/:id/accept.
func (h *FulfillmentHandler) Accept(c *gin.Context) {
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

	order, err := h.orders.Accept(c.Request.Context(), userID, orderID)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Reject обрабатывает POST /fulfillment/orders/:id/reject.
func (h *FulfillmentHandler) Reject(c *gin.Context) {
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
		Reason *string `json:"reason"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	order, err := h.orders.Reject(c.Request.Context(), userID, orderID, req.Reason)
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Deliver обрабатывает POST /fulfillment/orders/:id/deliver.
func (h *FulfillmentHandler) Deliver(c *gin.Context) {
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
		Message string                `json:"message" binding:"required"`
		Files   []models.DeliveryFile `json:"files"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Deliver(c.Request.Context(), userID, orderID, service.DeliverInput{
		Message: req.Message,
		Files:   req.Files,
	})
	if err != nil {
		common.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
