// internal/domain/order/events.go
package order

import (
	"context"
	"errors"
	"time"
)

// Event types
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// Event describes something that happened to an order
type Event struct {
	Type       string      `json:"type"`
	OrderID    uint        `json:"orderId"`
	Reference  string      `json:"reference"`
	CampusID   uint        `json:"campusId"`
	Status     OrderStatus `json:"status"`
	FromStatus OrderStatus `json:"fromStatus,omitempty"`
	Actor      string      `json:"actor,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Order      *Order      `json:"order,omitempty"`
}

// NewCreatedEvent builds an order.created event
func NewCreatedEvent(o *Order, at time.Time) Event {
	return Event{
		Type:       EventOrderCreated,
		OrderID:    o.ID,
		Reference:  o.Reference,
		CampusID:   o.CampusID,
		Status:     o.EffectiveStatus(),
		OccurredAt: at,
		Order:      o,
	}
}

// NewStatusChangedEvent builds an order.status_changed event
func NewStatusChangedEvent(o *Order, from OrderStatus, actor string, at time.Time) Event {
	return Event{
		Type:       EventOrderStatusChanged,
		OrderID:    o.ID,
		Reference:  o.Reference,
		CampusID:   o.CampusID,
		Status:     o.EffectiveStatus(),
		FromStatus: from,
		Actor:      actor,
		OccurredAt: at,
		Order:      o,
	}
}

// Publisher delivers order events to interested parties
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Publishers fans an event out to several publishers
type Publishers []Publisher

// Publish delivers evt to every publisher and joins their errors
func (ps Publishers) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
