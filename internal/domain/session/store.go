// internal/domain/session/store.go
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Slot names shared with the storefront client
const (
	KeyCartItems          = "cartItems"
	KeySelectedUniversity = "selectedUniversity"
	KeySelectedCampus     = "selectedCampus"
)

// ErrNotFound is returned when a session slot holds no value
var ErrNotFound = errors.New("session slot not found")

// Store is a per-session key/value slot store
type Store interface {
	Get(ctx context.Context, sessionID, key string) ([]byte, error)
	Set(ctx context.Context, sessionID, key string, value []byte) error
	Delete(ctx context.Context, sessionID, key string) error
}

// GetJSON decodes a slot into dest. A missing or malformed slot reports
// found=false with a nil error; only store failures are returned.
func GetJSON(ctx context.Context, store Store, sessionID, key string, dest interface{}) (found bool, malformed bool, err error) {
	raw, err := store.Get(ctx, sessionID, key)
	if errors.Is(err, ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, true, nil
	}
	return true, false, nil
}

// SetJSON encodes value into a slot
func SetJSON(ctx context.Context, store Store, sessionID, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session slot %s: %w", key, err)
	}
	return store.Set(ctx, sessionID, key, raw)
}
