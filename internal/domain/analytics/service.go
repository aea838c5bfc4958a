// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

const (
	defaultDays = 14
	maxDays     = 365
	defaultTop  = 5
	maxTop      = 50
)

// OrderSource loads the orders a dashboard is computed from
type OrderSource interface {
	ListForAnalytics(ctx context.Context, scope order.AnalyticsScope) ([]order.Order, error)
}

// DashboardRequest holds the dashboard query parameters
type DashboardRequest struct {
	Scope  order.AnalyticsScope
	Period string
	Days   int
	Top    int
}

// Dashboard is everything the admin dashboard renders in one response
type Dashboard struct {
	GeneratedAt        time.Time        `json:"generatedAt"`
	Period             Period           `json:"period"`
	Days               int              `json:"days"`
	TotalOrders        int              `json:"totalOrders"`
	Statuses           []StatusData     `json:"statuses"`
	Daily              []TimeSeriesData `json:"daily"`
	Collection         Collection       `json:"collection"`
	DeliveryRate       RateStats        `json:"deliveryRate"`
	Hourly             [24]int          `json:"hourly"`
	TopRestaurants     Ranking          `json:"topRestaurants"`
	TopItems           Ranking          `json:"topItems"`
	OrdersByPeriod     Series           `json:"ordersByPeriod"`
	DeliveriesByPeriod Series           `json:"deliveriesByPeriod"`
}

type Service struct {
	orders OrderSource
	config *config.Config
	now    func() time.Time
}

func NewService(orders OrderSource, cfg *config.Config) *Service {
	loc := cfg.Location()
	return &Service{
		orders: orders,
		config: cfg,
		now:    func() time.Time { return time.Now().In(loc) },
	}
}

// Dashboard computes every aggregate over the orders visible to the scope
func (s *Service) Dashboard(ctx context.Context, req DashboardRequest) (*Dashboard, error) {
	days := clamp(req.Days, defaultDays, maxDays)
	top := clamp(req.Top, defaultTop, maxTop)
	period := ParsePeriod(req.Period)

	orders, err := s.orders.ListForAnalytics(ctx, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders for analytics: %w", err)
	}

	now := s.now()
	return &Dashboard{
		GeneratedAt:        now,
		Period:             period,
		Days:               days,
		TotalOrders:        len(orders),
		Statuses:           nonNil(StatusHistogram(orders)),
		Daily:              DailySeries(orders, days, now),
		Collection:         CollectionSplit(orders),
		DeliveryRate:       DeliveredRate(orders),
		Hourly:             HourlyHistogram(orders, days, now),
		TopRestaurants:     TopRestaurantsByRevenue(orders, top),
		TopItems:           TopItemsByQuantity(orders, top),
		OrdersByPeriod:     OrdersByPeriod(orders, period, now),
		DeliveriesByPeriod: DeliveriesByPeriod(orders, period, now),
	}, nil
}

func clamp(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func nonNil(s []StatusData) []StatusData {
	if s == nil {
		return []StatusData{}
	}
	return s
}
