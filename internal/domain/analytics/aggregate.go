// internal/domain/analytics/aggregate.go
package analytics

import (
	"sort"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// StatusData is the number of orders in one status
type StatusData struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// TimeSeriesData is one day bucket
type TimeSeriesData struct {
	Date    string  `json:"date"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Collection splits revenue into collected and outstanding amounts
type Collection struct {
	Total      float64 `json:"total"`
	Delivered  float64 `json:"delivered"`
	Receivable float64 `json:"receivable"`
}

// RateStats is the share of orders that were delivered
type RateStats struct {
	Rate           float64 `json:"rate"`
	DeliveredCount int     `json:"deliveredCount"`
	TotalCount     int     `json:"totalCount"`
	Delivered      float64 `json:"delivered"`
	Receivable     float64 `json:"receivable"`
}

// Ranking is a top-N list as parallel label/value arrays
type Ranking struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

const dateLayout = "2006-01-02"

// StatusHistogram counts orders per status in first-seen order; a blank status counts as pending
func StatusHistogram(orders []order.Order) []StatusData {
	index := make(map[string]int)
	var out []StatusData
	for i := range orders {
		status := string(orders[i].EffectiveStatus())
		if j, ok := index[status]; ok {
			out[j].Count++
			continue
		}
		index[status] = len(out)
		out = append(out, StatusData{Status: status, Count: 1})
	}
	return out
}

// DailySeries builds days buckets ending today (inclusive) in now's location.
// Orders outside the window are ignored.
func DailySeries(orders []order.Order, days int, now time.Time) []TimeSeriesData {
	if days < 1 {
		return []TimeSeriesData{}
	}

	today := startOfDay(now)
	series := make([]TimeSeriesData, days)
	for i := range series {
		series[i].Date = today.AddDate(0, 0, -(days - 1 - i)).Format(dateLayout)
	}

	for i := range orders {
		if orders[i].CreatedAt.IsZero() {
			continue
		}
		offset := dayDiff(today, startOfDay(orders[i].CreatedAt.In(now.Location())))
		if offset < 0 || offset >= days {
			continue
		}
		b := &series[days-1-offset]
		b.Count++
		b.Revenue += orders[i].GrandTotal
	}
	return series
}

// CollectionSplit partitions revenue into delivered and receivable
func CollectionSplit(orders []order.Order) Collection {
	var c Collection
	for i := range orders {
		c.Total += orders[i].GrandTotal
		if orders[i].IsDelivered() {
			c.Delivered += orders[i].GrandTotal
		}
	}
	c.Receivable = c.Total - c.Delivered
	if c.Receivable < 0 {
		c.Receivable = 0
	}
	return c
}

// DeliveredRate is delivered/total, zero when there are no orders
func DeliveredRate(orders []order.Order) RateStats {
	c := CollectionSplit(orders)
	stats := RateStats{
		TotalCount: len(orders),
		Delivered:  c.Delivered,
		Receivable: c.Receivable,
	}
	for i := range orders {
		if orders[i].IsDelivered() {
			stats.DeliveredCount++
		}
	}
	if stats.TotalCount > 0 {
		stats.Rate = float64(stats.DeliveredCount) / float64(stats.TotalCount)
	}
	return stats
}

// HourlyHistogram counts orders per local hour over [now-days, now]
func HourlyHistogram(orders []order.Order, days int, now time.Time) [24]int {
	var hours [24]int
	from := now.Add(-time.Duration(days) * 24 * time.Hour)
	for i := range orders {
		created := orders[i].CreatedAt
		if created.Before(from) || created.After(now) {
			continue
		}
		hours[created.In(now.Location()).Hour()]++
	}
	return hours
}

// TopRestaurantsByRevenue credits each order's grand total to every restaurant on it
func TopRestaurantsByRevenue(orders []order.Order, n int) Ranking {
	acc := newAccumulator()
	for i := range orders {
		for _, name := range orders[i].Restaurants() {
			acc.add(name, orders[i].GrandTotal)
		}
	}
	return acc.top(n)
}

// TopItemsByQuantity ranks item names by units sold
func TopItemsByQuantity(orders []order.Order, n int) Ranking {
	acc := newAccumulator()
	for i := range orders {
		for _, it := range orders[i].Items() {
			if it.Name == "" {
				continue
			}
			acc.add(it.Name, float64(it.Quantity))
		}
	}
	return acc.top(n)
}

// accumulator sums values per key, remembering first-seen order for ties
type accumulator struct {
	keys   []string
	values map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{values: make(map[string]float64)}
}

func (a *accumulator) add(key string, v float64) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] += v
}

func (a *accumulator) top(n int) Ranking {
	keys := append([]string(nil), a.keys...)
	sort.SliceStable(keys, func(i, j int) bool {
		return a.values[keys[i]] > a.values[keys[j]]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}

	r := Ranking{Labels: keys, Values: make([]float64, len(keys))}
	if r.Labels == nil {
		r.Labels = []string{}
	}
	for i, k := range keys {
		r.Values[i] = a.values[k]
	}
	return r
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayDiff counts calendar days from b to a, independent of DST shifts.
// Unix seconds keep the result exact for spans a Duration cannot hold.
func dayDiff(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((ua.Unix() - ub.Unix()) / 86400)
}
