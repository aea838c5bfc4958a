// internal/domain/ledger/repository.go
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrEntryNotFound = errors.New("ledger entry not found")

// Repository stores outbox entries
type Repository interface {
	Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]OutboxEntry, error)
	MarkSent(ctx context.Context, id uuid.UUID, attempts int, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, status OutboxStatus, next time.Time) error
	Stats(ctx context.Context) (map[OutboxStatus]int64, error)
	Requeue(ctx context.Context, id uuid.UUID, now time.Time) error
}

// GormRepository is the postgres-backed outbox
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Claim locks pending entries whose next attempt has come, oldest first, and
// pushes their next attempt out by lease so no other pass picks them up while
// they are in flight. An entry whose holder dies is retried once the lease ends.
func (r *GormRepository) Claim(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]OutboxEntry, error) {
	var entries []OutboxEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND next_attempt_at <= ?", OutboxStatusPending, now).
			Order("created_at ASC").
			Limit(limit).
			Find(&entries).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(entries))
		for i := range entries {
			ids[i] = entries[i].ID
		}
		return tx.Model(&OutboxEntry{}).Where("id IN ?", ids).
			Update("next_attempt_at", now.Add(lease)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim due ledger entries: %w", err)
	}
	return entries, nil
}

func (r *GormRepository) MarkSent(ctx context.Context, id uuid.UUID, attempts int, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":     OutboxStatusSent,
		"attempts":   attempts,
		"sent_at":    at,
		"last_error": "",
	})
}

func (r *GormRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, lastErr string, status OutboxStatus, next time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":          status,
		"attempts":        attempts,
		"last_error":      lastErr,
		"next_attempt_at": next,
	})
}

// Stats counts entries per status
func (r *GormRepository) Stats(ctx context.Context) (map[OutboxStatus]int64, error) {
	var rows []struct {
		Status OutboxStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&OutboxEntry{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	stats := map[OutboxStatus]int64{
		OutboxStatusPending: 0,
		OutboxStatusSent:    0,
		OutboxStatusFailed:  0,
	}
	for _, row := range rows {
		stats[row.Status] = row.Count
	}
	return stats, nil
}

// Requeue moves a failed entry back to pending for an immediate retry
func (r *GormRepository) Requeue(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"status":          OutboxStatusPending,
		"attempts":        0,
		"next_attempt_at": now,
	})
}

func (r *GormRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&OutboxEntry{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update ledger entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}
