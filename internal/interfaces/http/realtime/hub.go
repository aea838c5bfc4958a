// internal/interfaces/http/realtime/hub.go
package realtime

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// ConnectionObserver tracks the number of live feed clients
type ConnectionObserver interface {
	ClientConnected(delta int)
}

// Message is what feed clients receive
type Message struct {
	Type string      `json:"type"`
	Data order.Event `json:"data"`
}

// Hub fans order events out to dashboard connections. Campus clients get
// events of their campus; global clients get everything.
type Hub struct {
	campuses map[uint]map[*Client]struct{}
	global   map[*Client]struct{}
	mu       sync.RWMutex
	observer ConnectionObserver
	logger   logrus.FieldLogger
}

// NewHub creates an empty hub
func NewHub(observer ConnectionObserver, logger logrus.FieldLogger) *Hub {
	return &Hub{
		campuses: make(map[uint]map[*Client]struct{}),
		global:   make(map[*Client]struct{}),
		observer: observer,
		logger:   logger,
	}
}

// Attach registers a client. A zero campus subscribes it to every campus.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	if c.campusID == 0 {
		h.global[c] = struct{}{}
	} else {
		if h.campuses[c.campusID] == nil {
			h.campuses[c.campusID] = make(map[*Client]struct{})
		}
		h.campuses[c.campusID][c] = struct{}{}
	}
	h.mu.Unlock()

	if h.observer != nil {
		h.observer.ClientConnected(1)
	}
	h.logger.WithFields(logrus.Fields{
		"user_id":   c.userID,
		"campus_id": c.campusID,
	}).Info("order feed client attached")
}

// Detach removes a client and closes it; calling it twice is harmless
func (h *Hub) Detach(c *Client) {
	h.mu.Lock()
	removed := false
	if c.campusID == 0 {
		if _, ok := h.global[c]; ok {
			delete(h.global, c)
			removed = true
		}
	} else if subs, ok := h.campuses[c.campusID]; ok {
		if _, ok := subs[c]; ok {
			delete(subs, c)
			removed = true
		}
		if len(subs) == 0 {
			delete(h.campuses, c.campusID)
		}
	}
	h.mu.Unlock()

	c.close()
	if removed {
		if h.observer != nil {
			h.observer.ClientConnected(-1)
		}
		h.logger.WithField("user_id", c.userID).Info("order feed client detached")
	}
}

// Clients returns the number of attached clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := len(h.global)
	for _, subs := range h.campuses {
		n += len(subs)
	}
	return n
}

// Publish implements order.Publisher. Slow clients are dropped rather than
// blocking the publisher.
func (h *Hub) Publish(_ context.Context, evt order.Event) error {
	data, err := json.Marshal(Message{Type: evt.Type, Data: evt})
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.global)+len(h.campuses[evt.CampusID]))
	for c := range h.global {
		targets = append(targets, c)
	}
	for c := range h.campuses[evt.CampusID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.wants(evt) {
			continue
		}
		if !c.enqueue(data) {
			h.logger.WithField("user_id", c.userID).Warn("order feed buffer full, dropping client")
			go h.Detach(c)
		}
	}
	return nil
}

// wants applies the restaurant filter of manager connections
func (c *Client) wants(evt order.Event) bool {
	if c.restaurantID == 0 {
		return true
	}
	if evt.Order == nil {
		return false
	}
	return slices.Contains([]uint(evt.Order.RestaurantIDs), c.restaurantID)
}
