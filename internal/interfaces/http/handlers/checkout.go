// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/domain/checkout"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
)

// OrderSubmitter places orders from the session cart
type OrderSubmitter interface {
	Submit(ctx context.Context, sessionID, remoteIP, actor string, req *checkout.SubmitOrderRequest) (*checkout.Result, error)
}

// CheckoutHandler handles order submission
type CheckoutHandler struct {
	checkout OrderSubmitter
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(submitter OrderSubmitter) *CheckoutHandler {
	return &CheckoutHandler{checkout: submitter}
}

// Submit handles POST /api/checkout and the legacy POST /submit-order
func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req checkout.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if verr := checkout.ValidationError(err); verr != nil {
			respondError(c, verr)
			return
		}
		respondError(c, invalidRequest(err))
		return
	}

	result, err := h.checkout.Submit(
		c.Request.Context(),
		middleware.SessionIDFromContext(c),
		c.ClientIP(),
		middleware.Actor(c),
		&req,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    result,
	})
}
