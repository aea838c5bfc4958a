// internal/domain/ledger/hook.go
package ledger

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// NewOutboxEntry builds the pending ledger entry for an order
func NewOutboxEntry(o *order.Order, loc *time.Location) (*OutboxEntry, error) {
	payload, err := json.Marshal(BuildRow(o, loc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger row: %w", err)
	}
	return &OutboxEntry{
		OrderID:   o.ID,
		Reference: o.Reference,
		TabName:   TabName(o),
		Payload:   payload,
		Status:    OutboxStatusPending,
	}, nil
}

// OutboxHook writes the ledger entry in the same transaction as the order
func OutboxHook(loc *time.Location) order.TxHook {
	return func(tx *gorm.DB, o *order.Order) error {
		entry, err := NewOutboxEntry(o, loc)
		if err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to create ledger entry: %w", err)
		}
		return nil
	}
}
