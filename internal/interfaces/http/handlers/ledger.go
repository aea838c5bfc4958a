// internal/interfaces/http/handlers/ledger.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/campus-delivery-backend/internal/domain/ledger"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// LedgerStore exposes the spreadsheet outbox to operators
type LedgerStore interface {
	Stats(ctx context.Context) (map[ledger.OutboxStatus]int64, error)
	Requeue(ctx context.Context, id uuid.UUID, now time.Time) error
}

// LedgerFlusher pushes due outbox entries immediately
type LedgerFlusher interface {
	Flush(ctx context.Context) (int, error)
}

// LedgerHandler handles spreadsheet projection endpoints
type LedgerHandler struct {
	store   LedgerStore
	flusher LedgerFlusher
}

// NewLedgerHandler creates a new ledger handler. flusher is nil when the
// spreadsheet sink is not configured.
func NewLedgerHandler(store LedgerStore, flusher LedgerFlusher) *LedgerHandler {
	return &LedgerHandler{store: store, flusher: flusher}
}

// GetStats handles GET /api/admin/ledger/stats
func (h *LedgerHandler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger statistics retrieved successfully",
		"data":    gin.H{"counts": stats, "enabled": h.flusher != nil},
	})
}

// Requeue handles POST /api/admin/ledger/:id/requeue
func (h *LedgerHandler) Requeue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.Validation("invalid ledger entry id"))
		return
	}

	if err := h.store.Requeue(c.Request.Context(), id, time.Now()); err != nil {
		if errors.Is(err, ledger.ErrEntryNotFound) {
			err = apperror.Wrap(apperror.TypeNotFound, err)
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ledger entry requeued"})
}

// Flush handles POST /api/admin/ledger/flush
func (h *LedgerHandler) Flush(c *gin.Context) {
	if h.flusher == nil {
		respondError(c, apperror.Conflict("spreadsheet sink is not configured"))
		return
	}

	sent, err := h.flusher.Flush(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Ledger flushed",
		"data":    gin.H{"sent": sent},
	})
}
