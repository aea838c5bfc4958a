// internal/infrastructure/metrics/metrics.go
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// Registry holds the service's collectors on a private registry
type Registry struct {
	reg             *prometheus.Registry
	OrdersCreated   prometheus.Counter
	StatusChanges   *prometheus.CounterVec
	LedgerResults   *prometheus.CounterVec
	CartMutations   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	WSClients       prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed through checkout.",
	})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_changes_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	ledgerResults := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_projection_total",
		Help: "Spreadsheet projection attempts by result.",
	}, []string{"result"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation.",
	}, []string{"op"})
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	wsClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_order_feed_clients",
		Help: "Connected order feed websocket clients.",
	})

	r.MustRegister(ordersCreated, statusChanges, ledgerResults, cartMutations, requestDuration, wsClients)
	return &Registry{
		reg:             r,
		OrdersCreated:   ordersCreated,
		StatusChanges:   statusChanges,
		LedgerResults:   ledgerResults,
		CartMutations:   cartMutations,
		RequestDuration: requestDuration,
		WSClients:       wsClients,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Gatherer exposes the registry for tests
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// CartMutation counts a cart operation
func (r *Registry) CartMutation(op string) { r.CartMutations.WithLabelValues(op).Inc() }

// LedgerResult counts a ledger projection outcome
func (r *Registry) LedgerResult(result string) { r.LedgerResults.WithLabelValues(result).Inc() }

// ObserveRequest records one HTTP request
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	r.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ClientConnected adjusts the websocket client gauge
func (r *Registry) ClientConnected(delta int) { r.WSClients.Add(float64(delta)) }

// Publish counts order events; it implements order.Publisher
func (r *Registry) Publish(_ context.Context, evt order.Event) error {
	switch evt.Type {
	case order.EventOrderCreated:
		r.OrdersCreated.Inc()
	case order.EventOrderStatusChanged:
		r.StatusChanges.WithLabelValues(string(evt.Status)).Inc()
	}
	return nil
}
