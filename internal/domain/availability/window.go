// internal/domain/availability/window.go
package availability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTime is returned by Validate for strings that are not "h:mm AM/PM"
var ErrMalformedTime = errors.New("time must look like 9:30 AM")

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([AaPp][Mm])$`)

// Window is an opening-hours pair as stored on a restaurant
type Window struct {
	OpensAt      string `json:"opensAt"`
	ClosesAt     string `json:"closesAt"`
	IsAlwaysOpen *bool  `json:"isAlwaysOpen,omitempty"`
}

// Availability is the evaluated window returned to API clients
type Availability struct {
	IsOpen     bool   `json:"isOpen"`
	OpensAt    string `json:"opensAt"`
	ClosesAt   string `json:"closesAt"`
	AlwaysOpen bool   `json:"alwaysOpen"`
}

// AlwaysOpen reports whether the window ignores its clock times. A window with
// a missing time counts as always open unless it is explicitly marked otherwise.
func (w Window) AlwaysOpen() bool {
	if w.IsAlwaysOpen != nil {
		return *w.IsAlwaysOpen
	}
	return strings.TrimSpace(w.OpensAt) == "" || strings.TrimSpace(w.ClosesAt) == ""
}

// IsOpen reports whether the window contains now, in now's location.
// Missing or unparseable times fail open.
func IsOpen(w Window, now time.Time) bool {
	if w.IsAlwaysOpen != nil && *w.IsAlwaysOpen {
		return true
	}

	openMin, err := ParseClock(w.OpensAt)
	if err != nil {
		return true
	}
	closeMin, err := ParseClock(w.ClosesAt)
	if err != nil {
		return true
	}

	nowMin := now.Hour()*60 + now.Minute()

	if closeMin >= openMin {
		return openMin <= nowMin && nowMin < closeMin
	}
	// overnight, e.g. 8:00 PM to 2:00 AM
	return nowMin >= openMin || nowMin < closeMin
}

// ParseClock converts "h:mm AM/PM" to minutes since midnight
func ParseClock(s string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hour, _ := strconv.Atoi(m[1])
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("%w: hour out of range in %q", ErrMalformedTime, s)
	}

	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
		if minute > 59 {
			return 0, fmt.Errorf("%w: minute out of range in %q", ErrMalformedTime, s)
		}
	}

	total := (hour%12)*60 + minute
	if strings.EqualFold(m[3], "PM") {
		total += 720
	}
	return total, nil
}

// Validate rejects windows whose configured times cannot be parsed.
// Empty times are allowed and mean "always open".
func Validate(w Window) error {
	if w.IsAlwaysOpen != nil && *w.IsAlwaysOpen {
		return nil
	}
	for _, s := range []string{w.OpensAt, w.ClosesAt} {
		if strings.TrimSpace(s) == "" {
			continue
		}
		if _, err := ParseClock(s); err != nil {
			return err
		}
	}
	return nil
}

// NextOpeningTime returns the configured opening time as a display hint
func NextOpeningTime(w Window) string {
	if w.IsAlwaysOpen != nil && *w.IsAlwaysOpen {
		return ""
	}
	return w.OpensAt
}

// NextClosingTime returns the configured closing time as a display hint
func NextClosingTime(w Window) string {
	if w.IsAlwaysOpen != nil && *w.IsAlwaysOpen {
		return ""
	}
	return w.ClosesAt
}

// Status evaluates the window for an API response
func Status(w Window, now time.Time) Availability {
	return Availability{
		IsOpen:     IsOpen(w, now),
		OpensAt:    NextOpeningTime(w),
		ClosesAt:   NextClosingTime(w),
		AlwaysOpen: w.AlwaysOpen(),
	}
}
