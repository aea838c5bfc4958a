// internal/domain/cart/service.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/domain/session"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// ErrCampusMismatch is returned when an item's campus differs from the session's campus
var ErrCampusMismatch = errors.New("item belongs to a different campus than the selected one")

// ErrCheckoutInProgress is returned when the session is already checking out
var ErrCheckoutInProgress = errors.New("an order for this cart is already being placed")

// CampusBinder reads and binds the campus a session orders from
type CampusBinder interface {
	SelectedCampus(ctx context.Context, sessionID string) (*session.CampusSelection, error)
	SelectCampus(ctx context.Context, sessionID string, campusID uint) (*session.State, error)
}

// MutationObserver is told about every cart mutation
type MutationObserver interface {
	CartMutation(op string)
}

// Service handles cart business logic
type Service struct {
	store     session.Store
	campuses  CampusBinder
	observer  MutationObserver
	logger    logrus.FieldLogger
	locks     *keyedMutex
	checkouts *inflight
}

// NewService creates a new cart service. campuses and observer may be nil.
func NewService(store session.Store, campuses CampusBinder, observer MutationObserver, logger logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		campuses:  campuses,
		observer:  observer,
		logger:    logger,
		locks:     newKeyedMutex(),
		checkouts: &inflight{ids: make(map[string]bool)},
	}
}

// Get retrieves the session's cart
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	return s.load(ctx, sessionID)
}

// Add merges one unit of an item into the cart, enforcing the session's campus
func (s *Service) Add(ctx context.Context, sessionID string, req *AddItemRequest) (*Cart, error) {
	if req.UnitPrice < 0 {
		return nil, apperror.Validation("unit price cannot be negative")
	}
	if err := s.bindCampus(ctx, sessionID, req.CampusRef); err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, "add", func(c *Cart) {
		c.Add(Item{Name: req.ItemName, Price: req.UnitPrice}, req.RestaurantLabel, req.RestaurantRef, req.CampusRef, req.Restaurant)
	})
}

// Increment adds one unit to a line
func (s *Service) Increment(ctx context.Context, sessionID, itemName, restaurantLabel string) (*Cart, error) {
	return s.mutate(ctx, sessionID, "increment", func(c *Cart) {
		c.Increment(itemName, restaurantLabel)
	})
}

// Decrement removes one unit from a line
func (s *Service) Decrement(ctx context.Context, sessionID, itemName, restaurantLabel string) (*Cart, error) {
	return s.mutate(ctx, sessionID, "decrement", func(c *Cart) {
		c.Decrement(itemName, restaurantLabel)
	})
}

// Remove drops a line
func (s *Service) Remove(ctx context.Context, sessionID, itemName, restaurantLabel string) (*Cart, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *Cart) {
		c.Remove(itemName, restaurantLabel)
	})
}

// Clear empties the cart and erases its slot
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID, session.KeyCartItems); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.observe("clear")
	return nil
}

// Checkout passes a snapshot of the cart to place and, once place succeeds,
// takes the ordered quantities out of the stored cart. Lines added while the
// order is being placed stay in the cart. One checkout per session runs at a time.
func (s *Service) Checkout(ctx context.Context, sessionID string, place func(c *Cart) error) error {
	if !s.checkouts.begin(sessionID) {
		return apperror.Wrap(apperror.TypeConflict, ErrCheckoutInProgress)
	}
	defer s.checkouts.end(sessionID)

	unlock := s.locks.lock(sessionID)
	snapshot, err := s.load(ctx, sessionID)
	unlock()
	if err != nil {
		return err
	}

	if err := place(snapshot); err != nil {
		return err
	}

	if _, err := s.mutate(ctx, sessionID, "checkout", func(c *Cart) {
		c.Subtract(snapshot)
	}); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Warn("Failed to settle cart after checkout")
	}
	return nil
}

// bindCampus rejects items from a campus other than the session's; the
// first item binds the session when no campus is selected yet
func (s *Service) bindCampus(ctx context.Context, sessionID, campusRef string) error {
	if s.campuses == nil || campusRef == "" {
		return nil
	}

	selected, err := s.campuses.SelectedCampus(ctx, sessionID)
	if err != nil {
		return err
	}
	if selected != nil {
		if strconv.FormatUint(uint64(selected.ID), 10) != campusRef {
			return apperror.Wrap(apperror.TypeValidation, ErrCampusMismatch)
		}
		return nil
	}

	campusID, err := strconv.ParseUint(campusRef, 10, 64)
	if err != nil {
		return apperror.Validation("campusRef must be a campus id")
	}
	_, err = s.campuses.SelectCampus(ctx, sessionID, uint(campusID))
	return err
}

func (s *Service) mutate(ctx context.Context, sessionID, op string, fn func(c *Cart)) (*Cart, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.save(ctx, sessionID, c); err != nil {
		return nil, err
	}
	s.observe(op)
	return c, nil
}

// load rehydrates the cart; a missing or malformed slot is an empty cart
func (s *Service) load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.store.Get(ctx, sessionID, session.KeyCartItems)
	if errors.Is(err, session.ErrNotFound) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Discarding malformed cart slot")
		return &Cart{}, nil
	}
	return &Cart{Lines: sanitize(lines)}, nil
}

func (s *Service) save(ctx context.Context, sessionID string, c *Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.store.Set(ctx, sessionID, session.KeyCartItems, raw); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *Service) observe(op string) {
	if s.observer != nil {
		s.observer.CartMutation(op)
	}
}

// sanitize drops lines that cannot exist in a well-formed cart and merges
// duplicate keys written by older clients
func sanitize(lines []Line) []Line {
	c := &Cart{}
	for _, l := range lines {
		if l.Quantity < 1 || l.ItemName == "" {
			continue
		}
		if i := c.find(l.ItemName, l.RestaurantLabel); i >= 0 {
			c.Lines[i].Quantity += l.Quantity
			continue
		}
		c.Lines = append(c.Lines, l)
	}
	return c.Lines
}

// inflight tracks sessions with a checkout underway
type inflight struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (f *inflight) begin(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ids[id] {
		return false
	}
	f.ids[id] = true
	return true
}

func (f *inflight) end(id string) {
	f.mu.Lock()
	delete(f.ids, id)
	f.mu.Unlock()
}

// keyedMutex serializes cart read-modify-write cycles per session
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
