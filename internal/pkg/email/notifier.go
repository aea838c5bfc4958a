// internal/pkg/email/notifier.go
package email

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// ErrQueueFull is returned when the notifier cannot keep up
var ErrQueueFull = errors.New("email queue is full")

var notifyOnStatus = map[order.OrderStatus]bool{
	order.OrderStatusAccepted:       true,
	order.OrderStatusOutForDelivery: true,
	order.OrderStatusDelivered:      true,
	order.OrderStatusCancelled:      true,
}

// Notifier emails customers about their orders in the background.
// It implements order.Publisher.
type Notifier struct {
	service *EmailService
	queue   chan order.Event
	logger  logrus.FieldLogger
}

// NewNotifier creates a notifier with room for queueSize pending emails
func NewNotifier(service *EmailService, queueSize int, logger logrus.FieldLogger) *Notifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Notifier{
		service: service,
		queue:   make(chan order.Event, queueSize),
		logger:  logger,
	}
}

// Publish queues an email for evt without blocking the caller
func (n *Notifier) Publish(_ context.Context, evt order.Event) error {
	if !n.wants(evt) {
		return nil
	}

	select {
	case n.queue <- evt:
		return nil
	default:
		n.logger.WithField("reference", evt.Reference).Warn("Email queue full, dropping notification")
		return ErrQueueFull
	}
}

func (n *Notifier) wants(evt order.Event) bool {
	if evt.Order == nil || evt.Order.Email == "" {
		return false
	}
	switch evt.Type {
	case order.EventOrderCreated:
		return true
	case order.EventOrderStatusChanged:
		return evt.FromStatus != evt.Status && notifyOnStatus[evt.Status]
	default:
		return false
	}
}

// Run sends queued emails until ctx is cancelled
func (n *Notifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-n.queue:
			n.send(ctx, evt)
		}
	}
}

func (n *Notifier) send(ctx context.Context, evt order.Event) {
	var err error
	if evt.Type == order.EventOrderCreated {
		err = n.service.SendOrderConfirmationEmail(ctx, evt.Order)
	} else {
		err = n.service.SendOrderStatusUpdateEmail(ctx, evt.Order)
	}

	log := n.logger.WithFields(logrus.Fields{
		"reference": evt.Reference,
		"event":     evt.Type,
	})
	if err != nil {
		log.WithError(err).Error("Failed to send order email")
		return
	}
	log.Debug("Order email sent")
}
