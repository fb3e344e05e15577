package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Mujanati13/Qabalan-sub006/internal/domain"
	"github.com/Mujanati13/Qabalan-sub006/internal/middleware"
	"github.com/Mujanati13/Qabalan-sub006/internal/models"
	"github.com/Mujanati13/Qabalan-sub006/internal/repository"
	"github.com/Mujanati13/Qabalan-sub006/internal/service"
	"github.com/Mujanati13/Qabalan-sub006/internal/ws"
	"github.com/Mujanati13/Qabalan-sub006/pkg/logger"

	"github.com/gin-gonic/gin"
)

// OrderHandler is the notification pipeline's main external caller: order
// events fan out over both the admin socket room and push.
type OrderHandler struct {
	orders *repository.OrderRepository
	notify *service.NotificationService
	hub    *ws.Hub
}

func NewOrderHandler(orders *repository.OrderRepository, notify *service.NotificationService, hub *ws.Hub) *OrderHandler {
	return &OrderHandler{orders: orders, notify: notify, hub: hub}
}

type CreateOrderRequest struct {
	TotalCents int64  `json:"total_cents" binding:"required,min=1"`
	Currency   string `json:"currency"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed preparing shipped delivered cancelled"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order := models.Order{
		UserID:     middleware.GetUserID(c),
		Status:     "pending",
		TotalCents: req.TotalCents,
	}
	if req.Currency != "" {
		order.Currency = req.Currency
	}
	if err := h.orders.Create(&order); err != nil {
		logger.Errorf("[Orders] create: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "order creation failed"})
		return
	}

	h.hub.NotifyNewOrder(order)
	if _, err := h.notify.Dispatch(c.Request.Context(), service.DispatchRequest{
		TargetMode: domain.TargetModeBroadcast,
		TitleAr:    "طلب جديد",
		TitleEn:    "New order",
		MessageAr:  fmt.Sprintf("تم إنشاء الطلب رقم %d", order.ID),
		MessageEn:  fmt.Sprintf("Order #%d was created", order.ID),
		Type:       domain.NotificationTypeOrder,
		Data:       map[string]interface{}{"order_id": order.ID},
		SaveToDB:   true,
	}); err != nil {
		logger.Errorf("[Orders] notify new order %d: %v", order.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.orders.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	if err := h.orders.UpdateStatus(order.ID, req.Status); err != nil {
		logger.Errorf("[Orders] update status %d: %v", order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status update failed"})
		return
	}
	order.Status = req.Status

	h.hub.NotifyOrderUpdated(order)
	if _, err := h.notify.Dispatch(c.Request.Context(), service.DispatchRequest{
		TargetMode: domain.TargetModeUser,
		UserID:     order.UserID,
		TitleAr:    "تحديث الطلب",
		TitleEn:    "Order update",
		MessageAr:  fmt.Sprintf("حالة طلبك رقم %d الآن: %s", order.ID, req.Status),
		MessageEn:  fmt.Sprintf("Your order #%d is now %s", order.ID, req.Status),
		Type:       domain.NotificationTypeOrder,
		Data:       map[string]interface{}{"order_id": order.ID, "status": req.Status},
		SaveToDB:   true,
	}); err != nil {
		logger.Errorf("[Orders] notify status change %d: %v", order.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
