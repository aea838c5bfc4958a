// internal/domain/ledger/relay.go
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/pkg/sheets"
)

const (
	defaultRelayInterval = 15 * time.Second
	defaultRelayBatch    = 20
	defaultMaxAttempts   = 8
	maxRescheduleDelay   = time.Hour
	triesPerPass         = 3
	claimLease           = 5 * time.Minute
)

// Appender writes a row to a spreadsheet tab
type Appender interface {
	AppendRow(ctx context.Context, tab string, row []interface{}) error
}

// Observer is told the outcome of each projection attempt
type Observer interface {
	LedgerResult(result string)
}

// Relay projects pending outbox entries onto the spreadsheet
type Relay struct {
	mu          sync.Mutex
	repo        Repository
	sheets      Appender
	observer    Observer
	logger      logrus.FieldLogger
	interval    time.Duration
	batch       int
	maxAttempts int
	backoff     func() backoff.BackOff
	now         func() time.Time
}

// NewRelay creates a relay; observer may be nil
func NewRelay(repo Repository, appender Appender, observer Observer, cfg config.SheetsConfig, logger logrus.FieldLogger) *Relay {
	r := &Relay{
		repo:        repo,
		sheets:      appender,
		observer:    observer,
		logger:      logger,
		interval:    cfg.RelayInterval,
		batch:       cfg.RelayBatch,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
	}
	if r.interval <= 0 {
		r.interval = defaultRelayInterval
	}
	if r.batch <= 0 {
		r.batch = defaultRelayBatch
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = defaultMaxAttempts
	}
	r.backoff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 200 * time.Millisecond
		b.MaxInterval = 2 * time.Second
		return b
	}
	return r
}

// Run flushes due entries every interval until ctx is done
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.WithField("interval", r.interval.String()).Info("Ledger relay started")
	for {
		if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
			r.logger.WithError(err).Error("Ledger relay pass failed")
		}

		select {
		case <-ctx.Done():
			r.logger.Info("Ledger relay stopped")
			return
		case <-ticker.C:
		}
	}
}

// Flush sends every due entry once and returns how many were delivered.
// Passes never overlap within a process; across processes the claim keeps
// an entry with a single sender.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.repo.Claim(ctx, r.now(), claimLease, r.batch)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range entries {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if r.deliver(ctx, &entries[i]) {
			sent++
		}
	}
	return sent, nil
}

func (r *Relay) deliver(ctx context.Context, entry *OutboxEntry) bool {
	log := r.logger.WithFields(logrus.Fields{
		"entry_id":  entry.ID.String(),
		"reference": entry.Reference,
		"tab":       entry.TabName,
	})

	var row []interface{}
	if err := json.Unmarshal(entry.Payload, &row); err != nil {
		r.fail(ctx, log, entry, entry.Attempts+1, backoff.Permanent(fmt.Errorf("malformed payload: %w", err)))
		return false
	}

	tries := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		tries++
		err := r.sheets.AppendRow(ctx, entry.TabName, row)
		var statusErr *sheets.StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(r.backoff()), backoff.WithMaxTries(triesPerPass))

	attempts := entry.Attempts + tries
	if err != nil {
		r.fail(ctx, log, entry, attempts, err)
		return false
	}

	if err := r.repo.MarkSent(ctx, entry.ID, attempts, r.now()); err != nil {
		log.WithError(err).Error("Failed to mark ledger entry sent")
	}
	r.observe("sent")
	log.WithField("attempts", attempts).Info("Ledger row written")
	return true
}

func (r *Relay) fail(ctx context.Context, log logrus.FieldLogger, entry *OutboxEntry, attempts int, cause error) {
	status := OutboxStatusPending
	var permanent *backoff.PermanentError
	if errors.As(cause, &permanent) || attempts >= r.maxAttempts {
		status = OutboxStatusFailed
	}

	next := r.now().Add(rescheduleDelay(attempts))
	if err := r.repo.MarkFailed(ctx, entry.ID, attempts, cause.Error(), status, next); err != nil {
		log.WithError(err).Error("Failed to record ledger failure")
	}

	r.observe(string(status))
	log.WithError(cause).WithFields(logrus.Fields{
		"attempts": attempts,
		"status":   status,
	}).Warn("Ledger row not written")
}

func (r *Relay) observe(result string) {
	if r.observer != nil {
		r.observer.LedgerResult(result)
	}
}

// rescheduleDelay doubles from 30s per attempt, capped at an hour
func rescheduleDelay(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := 30 * time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxRescheduleDelay {
			return maxRescheduleDelay
		}
	}
	return d
}
