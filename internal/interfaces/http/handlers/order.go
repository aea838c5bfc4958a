// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

// OrderService reads and advances orders
type OrderService interface {
	List(ctx context.Context, req *order.OrderListRequest) (*order.OrderResponse, error)
	Get(ctx context.Context, id uint) (*order.Order, error)
	GetByReference(ctx context.Context, reference string) (*order.Order, error)
	UpdateStatus(ctx context.Context, id uint, to order.OrderStatus, comment, actor string) (*order.Order, bool, error)
}

// ReceiptRenderer renders an order receipt as PDF
type ReceiptRenderer interface {
	GenerateReceipt(o *order.Order) ([]byte, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders   OrderService
	receipts ReceiptRenderer
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService, receipts ReceiptRenderer) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		receipts: receipts,
	}
}

// OrderDetail is an order with the statuses it may move to next
type OrderDetail struct {
	*order.Order
	NextStatuses []order.OrderStatus `json:"nextStatuses"`
}

func newOrderDetail(o *order.Order) OrderDetail {
	next := order.NextStatuses(o.EffectiveStatus())
	if next == nil {
		next = []order.OrderStatus{}
	}
	return OrderDetail{Order: o, NextStatuses: next}
}

// ListOrders handles GET /api/orders. Campus admins and restaurant managers
// only ever see their own campus or restaurant.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	principal, _ := middleware.PrincipalFromContext(c)
	switch principal.Role {
	case auth.RoleCampusAdmin:
		req.CampusID = principal.CampusID
	case auth.RoleRestaurantManager:
		req.CampusID = principal.CampusID
		req.RestaurantID = principal.RestaurantID
	}
	if !authorize(c, auth.ActionViewOrders, auth.Scope{CampusID: req.CampusID}) {
		return
	}

	result, err := h.orders.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    result,
	})
}

// GetOrder handles GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.orderFor(c, auth.ActionViewOrders)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    newOrderDetail(o),
	})
}

// UpdateOrderStatus handles PATCH /api/orders/:id/status. Illegal moves answer
// 409; writing the current status is accepted and changes nothing.
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	o, ok := h.orderFor(c, auth.ActionUpdateOrderStatus)
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	updated, changed, err := h.orders.UpdateStatus(c.Request.Context(), o.ID, req.Status, req.Comment, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Order status updated successfully"
	if !changed {
		message = "Order already has this status"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"changed": changed,
		"data":    newOrderDetail(updated),
	})
}

// GetReceipt handles GET /api/orders/:id/receipt
func (h *OrderHandler) GetReceipt(c *gin.Context) {
	o, ok := h.orderFor(c, auth.ActionViewOrders)
	if !ok {
		return
	}
	h.writeReceipt(c, o)
}

// TrackOrder handles GET /api/my-orders/:reference for the session that placed it
func (h *OrderHandler) TrackOrder(c *gin.Context) {
	o, ok := h.sessionOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// GetMyReceipt handles GET /api/my-orders/:reference/receipt
func (h *OrderHandler) GetMyReceipt(c *gin.Context) {
	o, ok := h.sessionOrder(c)
	if !ok {
		return
	}
	h.writeReceipt(c, o)
}

func (h *OrderHandler) writeReceipt(c *gin.Context, o *order.Order) {
	pdf, err := h.receipts.GenerateReceipt(o)
	if err != nil {
		respondError(c, apperror.Server("failed to generate receipt", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", o.Reference))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// orderFor loads the :id order and checks the caller may act on it
func (h *OrderHandler) orderFor(c *gin.Context, action auth.Action) (*order.Order, bool) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	scope := auth.Scope{CampusID: o.CampusID, RestaurantIDs: []uint(o.RestaurantIDs), Resource: true}
	if !authorize(c, action, scope) {
		return nil, false
	}
	return o, true
}

// sessionOrder loads the :reference order if the current session placed it.
// Foreign orders read as not found so references cannot be probed.
func (h *OrderHandler) sessionOrder(c *gin.Context) (*order.Order, bool) {
	o, err := h.orders.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if o.SessionID == "" || o.SessionID != middleware.SessionIDFromContext(c) {
		respondError(c, apperror.Wrap(apperror.TypeNotFound, order.ErrOrderNotFound))
		return nil, false
	}
	return o, true
}
