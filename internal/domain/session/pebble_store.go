// internal/domain/session/pebble_store.go
package session

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// PebbleStore keeps session slots in an embedded Pebble database. Values are
// prefixed with an 8-byte expiry so stale slots read as missing.
type PebbleStore struct {
	db  *pebble.DB
	ttl time.Duration
	now func() time.Time
}

// NewPebbleStore opens (or creates) a Pebble database in dir
func NewPebbleStore(dir string, ttl time.Duration) (*PebbleStore, error) {
	return openPebble(filepath.Clean(dir), &pebble.Options{}, ttl)
}

// NewMemPebbleStore opens a Pebble database on an in-memory filesystem
func NewMemPebbleStore(ttl time.Duration) (*PebbleStore, error) {
	return openPebble("", &pebble.Options{FS: vfs.NewMem()}, ttl)
}

func openPebble(dir string, opts *pebble.Options, ttl time.Duration) (*PebbleStore, error) {
	db, err := pebble.Open(dir, opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebbleStore{db: db, ttl: ttl, now: time.Now}, nil
}

// Close closes the underlying database
func (s *PebbleStore) Close() error { return s.db.Close() }

func pebbleKey(sessionID, key string) []byte {
	return []byte("session/" + sessionID + "/" + key)
}

// Get returns the raw slot value
func (s *PebbleStore) Get(_ context.Context, sessionID, key string) ([]byte, error) {
	v, closer, err := s.db.Get(pebbleKey(sessionID, key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session slot: %w", err)
	}
	defer closer.Close()

	if len(v) < 8 {
		return nil, ErrNotFound
	}
	expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
	if expiresAt > 0 && s.now().UnixNano() >= expiresAt {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v[8:]...), nil
}

// Set overwrites the slot and refreshes its expiry
func (s *PebbleStore) Set(_ context.Context, sessionID, key string, value []byte) error {
	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = s.now().Add(s.ttl).UnixNano()
	}

	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	if err := s.db.Set(pebbleKey(sessionID, key), buf, pebble.Sync); err != nil {
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	return nil
}

// Delete erases the slot
func (s *PebbleStore) Delete(_ context.Context, sessionID, key string) error {
	if err := s.db.Delete(pebbleKey(sessionID, key), pebble.Sync); err != nil {
		return fmt.Errorf("failed to delete session slot: %w", err)
	}
	return nil
}
