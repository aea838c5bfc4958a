// internal/domain/ledger/entity.go
package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OutboxStatus tracks delivery of a ledger row to the spreadsheet
type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "pending"
	OutboxStatusSent    OutboxStatus = "sent"
	OutboxStatusFailed  OutboxStatus = "failed"
)

// OutboxEntry is one spreadsheet row waiting to be projected
type OutboxEntry struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID       uint           `gorm:"not null;index" json:"orderId"`
	Reference     string         `gorm:"size:50;index" json:"reference"`
	TabName       string         `gorm:"not null;size:255" json:"tabName"`
	Payload       datatypes.JSON `gorm:"not null" json:"payload"`
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	LastError     string         `gorm:"type:text" json:"lastError,omitempty"`
	Status        OutboxStatus   `gorm:"not null;size:16;default:'pending';index" json:"status"`
	NextAttemptAt time.Time      `gorm:"not null;index" json:"nextAttemptAt"`
	SentAt        *time.Time     `json:"sentAt,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (OutboxEntry) TableName() string { return "ledger_outbox" }

// BeforeCreate assigns an id and schedules the first attempt
func (e *OutboxEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = OutboxStatusPending
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = time.Now()
	}
	return nil
}
