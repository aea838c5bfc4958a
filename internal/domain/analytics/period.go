// internal/domain/analytics/period.go
package analytics

import (
	"strings"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/domain/order"
)

// Period selects the window of a period chart
type Period string

const (
	PeriodDay      Period = "1day"
	PeriodWeek     Period = "7days"
	PeriodMonth    Period = "1month"
	PeriodHalfYear Period = "6months"
	PeriodYear     Period = "1year"
	PeriodAll      Period = "all"
)

// Series is a period chart: one entry per day, labels may be blank
type Series struct {
	Labels  []string  `json:"labels"`
	Counts  []int     `json:"counts"`
	Revenue []float64 `json:"revenue"`
}

// ParsePeriod maps a query value to a Period, defaulting to 7days
func ParsePeriod(s string) Period {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodHalfYear, PeriodYear, PeriodAll:
		return p
	default:
		return PeriodWeek
	}
}

// Start returns the first day of the period window; all uses the earliest
// order with a creation time
func (p Period) Start(orders []order.Order, now time.Time) time.Time {
	today := startOfDay(now)
	switch p {
	case PeriodDay:
		return today
	case PeriodMonth:
		return today.AddDate(0, 0, -29)
	case PeriodHalfYear:
		return today.AddDate(0, -6, 1)
	case PeriodYear:
		return today.AddDate(-1, 0, 1)
	case PeriodAll:
		earliest := today
		for i := range orders {
			if orders[i].CreatedAt.IsZero() {
				continue
			}
			day := startOfDay(orders[i].CreatedAt.In(now.Location()))
			if day.Before(earliest) {
				earliest = day
			}
		}
		return earliest
	default:
		return today.AddDate(0, 0, -6)
	}
}

// OrdersByPeriod buckets every order per day over the period window
func OrdersByPeriod(orders []order.Order, period Period, now time.Time) Series {
	return periodSeries(orders, period, now, func(*order.Order) bool { return true })
}

// DeliveriesByPeriod buckets delivered orders per day over the period window
func DeliveriesByPeriod(orders []order.Order, period Period, now time.Time) Series {
	return periodSeries(orders, period, now, (*order.Order).IsDelivered)
}

func periodSeries(orders []order.Order, period Period, now time.Time, keep func(*order.Order) bool) Series {
	today := startOfDay(now)
	start := period.Start(orders, now)
	days := dayDiff(today, start) + 1

	s := Series{
		Labels:  make([]string, days),
		Counts:  make([]int, days),
		Revenue: make([]float64, days),
	}
	for i := 0; i < days; i++ {
		s.Labels[i] = periodLabel(start.AddDate(0, 0, i), i, days)
	}

	for i := range orders {
		if orders[i].CreatedAt.IsZero() || !keep(&orders[i]) {
			continue
		}
		idx := dayDiff(startOfDay(orders[i].CreatedAt.In(now.Location())), start)
		if idx < 0 || idx >= days {
			continue
		}
		s.Counts[idx]++
		s.Revenue[idx] += orders[i].GrandTotal
	}
	return s
}

// periodLabel labels every day for short windows, weekly up to six months
// and the first of each month beyond that
func periodLabel(day time.Time, index, days int) string {
	switch {
	case days < 30:
		return day.Format("Jan 02")
	case days <= 184:
		if index%7 == 0 {
			return day.Format("Jan 02")
		}
		return ""
	default:
		if day.Day() == 1 {
			return day.Format("Jan 2006")
		}
		return ""
	}
}
