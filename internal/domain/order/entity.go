// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusAccepted       OrderStatus = "accepted"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out-for-delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// Statuses lists every status in lifecycle order
var Statuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusAccepted,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseStatus converts a string into a known status
func ParseStatus(s string) (OrderStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Item is one priced line of an order
type Item struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	Restaurant   string  `json:"restaurant"`
	RestaurantID uint    `json:"restaurantId,omitempty"`
}

// Order represents the order entity
type Order struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"uniqueIndex;not null;size:50" json:"reference"`
	SessionID string `gorm:"size:64;index" json:"-"`
	UserID    string `gorm:"size:128;index" json:"userId,omitempty"`

	// Tenancy
	UniversityID   uint   `gorm:"index" json:"universityId"`
	UniversityName string `gorm:"size:255" json:"universityName"`
	CampusID       uint   `gorm:"not null;index" json:"campusId"`
	CampusName     string `gorm:"size:255" json:"campusName"`

	// Customer
	CustomerName string `gorm:"not null;size:255" json:"customerName"`
	Phone        string `gorm:"not null;size:32" json:"phone"`
	Email        string `gorm:"size:255" json:"email"`
	Gender       string `gorm:"size:16" json:"gender"`
	Address      string `gorm:"type:text;not null" json:"address"`
	Persons      int    `gorm:"not null;default:1" json:"persons"`

	// Money
	ItemTotal      float64 `gorm:"not null" json:"itemTotal"`
	DeliveryCharge float64 `gorm:"not null" json:"deliveryCharge"`
	GrandTotal     float64 `gorm:"not null" json:"grandTotal"`

	Status OrderStatus `gorm:"not null;size:32;default:'pending';index" json:"status"`

	// Contents
	CartItemsText   string                      `gorm:"type:text" json:"cartItemsText"`
	CartItemsArray  datatypes.JSONSlice[Item]   `gorm:"not null;default:'[]'" json:"cartItemsArray"`
	RestaurantNames datatypes.JSONSlice[string] `gorm:"not null;default:'[]'" json:"restaurantNames"`
	RestaurantIDs   datatypes.JSONSlice[uint]   `gorm:"not null;default:'[]'" json:"restaurantIds"`

	// Payment
	PaymentScreenshotURL string `gorm:"size:1000" json:"paymentScreenshotURL"`
	PayeeName            string `gorm:"size:255" json:"payeeName"`
	PayeeBank            string `gorm:"size:255" json:"payeeBank"`
	PayeeAccount         string `gorm:"size:64" json:"payeeAccount"`

	Notes string `gorm:"type:text" json:"notes"`

	// Timestamps
	AcceptedAt  *time.Time     `json:"acceptedAt,omitempty"`
	DeliveredAt *time.Time     `json:"deliveredAt,omitempty"`
	CancelledAt *time.Time     `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"statusHistory,omitempty"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"orderId"`
	FromStatus OrderStatus `gorm:"size:32" json:"fromStatus"`
	Status     OrderStatus `gorm:"not null;size:32" json:"status"`
	Comment    string      `gorm:"type:text" json:"comment"`
	CreatedBy  string      `gorm:"size:128;index" json:"createdBy"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// BeforeCreate fills the reference and keeps JSON columns non-null
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.Reference == "" {
		o.Reference = NewReference(time.Now())
	}
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
	if o.CartItemsArray == nil {
		o.CartItemsArray = datatypes.JSONSlice[Item]{}
	}
	if o.RestaurantNames == nil {
		o.RestaurantNames = datatypes.JSONSlice[string]{}
	}
	if o.RestaurantIDs == nil {
		o.RestaurantIDs = datatypes.JSONSlice[uint]{}
	}
	return nil
}

// NewReference generates a human-readable order reference
func NewReference(now time.Time) string {
	// Format: ORD-YYYYMMDD-XXXXXXXX
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), id[:8])
}

// IsDelivered checks if order is delivered
func (o *Order) IsDelivered() bool {
	return o.Status == OrderStatusDelivered
}

// EffectiveStatus treats a blank status as pending
func (o *Order) EffectiveStatus() OrderStatus {
	if o.Status == "" {
		return OrderStatusPending
	}
	return o.Status
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(from, to OrderStatus, comment, createdBy string, at time.Time) {
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderID:    o.ID,
		FromStatus: from,
		Status:     to,
		Comment:    comment,
		CreatedBy:  createdBy,
		CreatedAt:  at,
	})
}
