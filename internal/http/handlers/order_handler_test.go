package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestOrderHandler_Create_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OrderHandler{orders: nil, users: nil}
	r.POST("/orders", handler.Create)

	req, _ := http.NewRequest("POST", "/orders", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_CapturePayment_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OrderHandler{orders: nil}
	r.POST("/orders/:id/pay", handler.CapturePayment)

	req, _ := http.NewRequest("POST", "/orders/123e4567-e89b-12d3-a456-426614174000/pay", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOrderHandler_SubmitAnswers_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &OrderHandler{orders: nil}
	r.PUT("/orders/:id/answers", handler.SubmitAnswers)

	req, _ := http.NewRequest("PUT", "/orders/123e4567-e89b-12d3-a456-426614174000/answers", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFulfillmentHandler_Accept_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &FulfillmentHandler{orders: nil}
	r.POST("/freelancer/orders/:id/accept", handler.Accept)

	req, _ := http.NewRequest("POST", "/freelancer/orders/123e4567-e89b-12d3-a456-426614174000/accept", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
