// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/domain/cart"
	"github.com/your-org/campus-delivery-backend/internal/domain/checkout"
	"github.com/your-org/campus-delivery-backend/internal/domain/session"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// CartService mutates the session cart
type CartService interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Add(ctx context.Context, sessionID string, req *cart.AddItemRequest) (*cart.Cart, error)
	Increment(ctx context.Context, sessionID, itemName, restaurantLabel string) (*cart.Cart, error)
	Decrement(ctx context.Context, sessionID, itemName, restaurantLabel string) (*cart.Cart, error)
	Remove(ctx context.Context, sessionID, itemName, restaurantLabel string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

// SelectionService manages the session's university and campus
type SelectionService interface {
	Current(ctx context.Context, sessionID string) (*session.State, error)
	SelectUniversity(ctx context.Context, sessionID string, universityID uint) (*session.State, error)
	SelectCampus(ctx context.Context, sessionID string, campusID uint) (*session.State, error)
	Clear(ctx context.Context, sessionID string) error
}

// Quoter prices the session cart
type Quoter interface {
	Quote(ctx context.Context, sessionID string, persons int, campusID uint) (*checkout.Quote, error)
}

// CartHandler handles cart and session selection endpoints
type CartHandler struct {
	carts     CartService
	selection SelectionService
	quoter    Quoter
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts CartService, selection SelectionService, quoter Quoter) *CartHandler {
	return &CartHandler{
		carts:     carts,
		selection: selection,
		quoter:    quoter,
	}
}

// SelectionRequest picks a university, a campus, or both
type SelectionRequest struct {
	UniversityID uint `json:"universityId"`
	CampusID     uint `json:"campusId"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	current, err := h.carts.Get(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    current.Response(),
	})
}

// AddToCart handles POST /api/cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	updated, err := h.carts.Add(c.Request.Context(), middleware.SessionIDFromContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    updated.Response(),
	})
}

// IncrementItem handles POST /api/cart/items/increment
func (h *CartHandler) IncrementItem(c *gin.Context) {
	h.mutateLine(c, h.carts.Increment, "Item quantity increased")
}

// DecrementItem handles POST /api/cart/items/decrement
func (h *CartHandler) DecrementItem(c *gin.Context) {
	h.mutateLine(c, h.carts.Decrement, "Item quantity decreased")
}

// RemoveItem handles DELETE /api/cart/items
func (h *CartHandler) RemoveItem(c *gin.Context) {
	h.mutateLine(c, h.carts.Remove, "Item removed from cart successfully")
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.SessionIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetTotals handles GET /api/cart/totals?persons=&campusId=
func (h *CartHandler) GetTotals(c *gin.Context) {
	persons := 1
	if raw := c.Query("persons"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, apperror.Validation("persons must be a positive number"))
			return
		}
		persons = n
	}
	campusID, err := queryID(c, "campusId")
	if err != nil {
		respondError(c, err)
		return
	}

	quote, err := h.quoter.Quote(c.Request.Context(), middleware.SessionIDFromContext(c), persons, campusID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Totals calculated successfully",
		"data":    quote,
	})
}

// GetSelection handles GET /api/session/selection
func (h *CartHandler) GetSelection(c *gin.Context) {
	state, err := h.selection.Current(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": state})
}

// UpdateSelection handles PUT /api/session/selection. Switching university
// drops a campus of the old one; a campus alone implies its university.
func (h *CartHandler) UpdateSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	ctx := c.Request.Context()
	sessionID := middleware.SessionIDFromContext(c)

	var (
		state *session.State
		err   error
	)
	if req.UniversityID == 0 && req.CampusID == 0 {
		err = apperror.Validation("universityId or campusId is required")
	}
	if err == nil && req.UniversityID > 0 {
		state, err = h.selection.SelectUniversity(ctx, sessionID, req.UniversityID)
	}
	if err == nil && req.CampusID > 0 {
		state, err = h.selection.SelectCampus(ctx, sessionID, req.CampusID)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Selection updated successfully",
		"data":    state,
	})
}

// ClearSelection handles DELETE /api/session/selection
func (h *CartHandler) ClearSelection(c *gin.Context) {
	if err := h.selection.Clear(c.Request.Context(), middleware.SessionIDFromContext(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Selection cleared successfully"})
}

type lineMutation func(ctx context.Context, sessionID, itemName, restaurantLabel string) (*cart.Cart, error)

func (h *CartHandler) mutateLine(c *gin.Context, mutate lineMutation, message string) {
	var req cart.LineKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	updated, err := mutate(c.Request.Context(), middleware.SessionIDFromContext(c), req.ItemName, req.RestaurantLabel)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data":    updated.Response(),
	})
}
