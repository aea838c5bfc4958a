// internal/domain/cart/entity.go
package cart

import (
	"github.com/your-org/campus-delivery-backend/internal/domain/availability"
)

// RestaurantMeta carries the opening hours of a line's restaurant so the
// cart can be checked for availability without a catalog round trip
type RestaurantMeta struct {
	OpenTime  string `json:"openTime,omitempty"`
	CloseTime string `json:"closeTime,omitempty"`
	Is24x7    *bool  `json:"is24x7,omitempty"`
}

// Window returns the meta as an availability window
func (m RestaurantMeta) Window() availability.Window {
	return availability.Window{OpensAt: m.OpenTime, ClosesAt: m.CloseTime, IsAlwaysOpen: m.Is24x7}
}

// Line is one (item, restaurant) pairing in a cart
type Line struct {
	ItemName        string          `json:"itemName"`
	UnitPrice       float64         `json:"unitPrice"`
	Quantity        int             `json:"quantity"`
	RestaurantLabel string          `json:"restaurantLabel"`
	RestaurantRef   string          `json:"restaurantRef,omitempty"`
	CampusRef       string          `json:"campusRef,omitempty"`
	Restaurant      *RestaurantMeta `json:"restaurant,omitempty"`
}

// Item is what a client adds to the cart
type Item struct {
	Name  string
	Price float64
}

// AddItemRequest represents add to cart request
type AddItemRequest struct {
	ItemName        string          `json:"itemName" binding:"required"`
	UnitPrice       float64         `json:"unitPrice" binding:"gte=0"`
	RestaurantLabel string          `json:"restaurantLabel" binding:"required"`
	RestaurantRef   string          `json:"restaurantRef"`
	CampusRef       string          `json:"campusRef"`
	Restaurant      *RestaurantMeta `json:"restaurant"`
}

// LineKeyRequest identifies a cart line
type LineKeyRequest struct {
	ItemName        string `json:"itemName" binding:"required"`
	RestaurantLabel string `json:"restaurantLabel" binding:"required"`
}

// CartResponse represents a cart with its summary
type CartResponse struct {
	Items       []Line   `json:"items"`
	Count       int      `json:"count"`
	Total       float64  `json:"total"`
	Restaurants []string `json:"restaurants"`
}
