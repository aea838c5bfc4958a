package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"gorm.io/datatypes"
)

func TestTransitionTable(t *testing.T) {
	allowed := map[OrderStatus][]OrderStatus{
		OrderStatusPending:        {OrderStatusAccepted, OrderStatusCancelled},
		OrderStatusAccepted:       {OrderStatusPreparing, OrderStatusCancelled},
		OrderStatusPreparing:      {OrderStatusReady, OrderStatusCancelled},
		OrderStatusReady:          {OrderStatusOutForDelivery, OrderStatusCancelled},
		OrderStatusOutForDelivery: {OrderStatusDelivered},
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}

	assert.True(t, IsTerminal(OrderStatusDelivered))
	assert.True(t, IsTerminal(OrderStatusCancelled))
	assert.False(t, IsTerminal(OrderStatusReady))
	assert.False(t, IsTerminal("bogus"))
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, CheckTransition(OrderStatusDelivered, OrderStatusDelivered))
	assert.NoError(t, CheckTransition(OrderStatusPending, OrderStatusAccepted))

	err := CheckTransition(OrderStatusDelivered, OrderStatusPending)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "delivered to pending")

	wrapped := apperror.Wrap(apperror.TypeConflict, err)
	assert.True(t, errors.Is(wrapped, ErrInvalidTransition))
}

func TestNextStatusesIsACopy(t *testing.T) {
	next := NextStatuses(OrderStatusPending)
	next[0] = OrderStatusDelivered
	assert.Equal(t, OrderStatusAccepted, NextStatuses(OrderStatusPending)[0])
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("out-for-delivery")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOutForDelivery, s)

	_, err = ParseStatus("out_for_delivery")
	assert.Error(t, err)
}

func TestStatusUpdates(t *testing.T) {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, map[string]interface{}{"status": OrderStatusDelivered, "delivered_at": now}, statusUpdates(OrderStatusDelivered, now))
	assert.Equal(t, map[string]interface{}{"status": OrderStatusPreparing}, statusUpdates(OrderStatusPreparing, now))
}

func TestItemsTextRoundTrip(t *testing.T) {
	items := []Item{
		{Name: "Burger", Quantity: 2, Restaurant: "Pizza Hut"},
		{Name: "Chai", Quantity: 1, Restaurant: "Dhaba"},
	}

	text := FormatItemsText(items)
	assert.Equal(t, "2x Burger (Pizza Hut)\n1x Chai (Dhaba)", text)
	assert.Equal(t, items, ParseItemsText(text))
}

func TestParseItemsTextFormats(t *testing.T) {
	got := ParseItemsText("Zinger x3\n- 2 x Fries (Hardee's)\nSamosa (Dhaba) x4\n\nMystery Box")

	assert.Equal(t, []Item{
		{Name: "Zinger", Quantity: 3},
		{Name: "Fries", Quantity: 2, Restaurant: "Hardee's"},
		{Name: "Samosa", Quantity: 4, Restaurant: "Dhaba"},
		{Name: "Mystery Box", Quantity: 1},
	}, got)
}

func TestOrderItemsPrefersArray(t *testing.T) {
	o := &Order{
		CartItemsText:  "9x Ignored",
		CartItemsArray: datatypes.JSONSlice[Item]{{Name: "Burger", Quantity: 2, Restaurant: "Pizza Hut"}},
	}
	assert.Equal(t, "Burger", o.Items()[0].Name)
	assert.Equal(t, []string{"Pizza Hut"}, o.Restaurants())

	o = &Order{CartItemsText: "1x Chai (Dhaba)\n2x Paratha (Dhaba)\n1x Shake (Hardee's)"}
	assert.Len(t, o.Items(), 3)
	assert.Equal(t, []string{"Dhaba", "Hardee's"}, o.Restaurants())

	o.RestaurantNames = datatypes.JSONSlice[string]{"Explicit"}
	assert.Equal(t, []string{"Explicit"}, o.Restaurants())

	o.RestaurantNames = datatypes.JSONSlice[string]{"Dhaba", "", "Hardee's", "Dhaba"}
	assert.Equal(t, []string{"Dhaba", "Hardee's"}, o.Restaurants())
}

func TestNewReference(t *testing.T) {
	ref := NewReference(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(ref, "ORD-20250309-"))
	assert.Len(t, ref, len("ORD-20250309-")+8)
	assert.NotEqual(t, ref, NewReference(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
}

func TestBeforeCreateDefaults(t *testing.T) {
	o := &Order{}
	require.NoError(t, o.BeforeCreate(nil))

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.NotEmpty(t, o.Reference)
	assert.NotNil(t, o.CartItemsArray)
	assert.NotNil(t, o.RestaurantNames)
	assert.NotNil(t, o.RestaurantIDs)
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, evt Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestPublishersJoinErrors(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}
	o := &Order{ID: 5, Reference: "ORD-1", CampusID: 2}

	err := Publishers{ok, nil, failing}.Publish(context.Background(), NewCreatedEvent(o, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Len(t, ok.events, 1)
	assert.Equal(t, EventOrderCreated, ok.events[0].Type)
	assert.Equal(t, OrderStatusPending, ok.events[0].Status)
}

func TestBuildOrderClause(t *testing.T) {
	assert.Equal(t, "grand_total asc", buildOrderClause("grand_total", "asc"))
	assert.Equal(t, "created_at desc", buildOrderClause("drop table", "sideways"))
}
