package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 14, hour, minute, 0, 0, time.UTC)
}

func boolPtr(b bool) *bool { return &b }

func TestParseClock(t *testing.T) {
	tests := map[string]int{
		"12 AM":    0,
		"12:00 AM": 0,
		"12:30 AM": 30,
		"12 PM":    720,
		"12:00 PM": 720,
		"1:05 PM":  785,
		"9:00 AM":  540,
		"8:00 pm":  1200,
		"11:59PM":  1439,
		" 7 am ":   420,
	}
	for in, want := range tests {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "20:00", "9:00", "13:00 PM", "0:30 AM", "9:75 AM", "noon"} {
		_, err := ParseClock(bad)
		assert.True(t, errors.Is(err, ErrMalformedTime), bad)
	}
}

func TestIsOpenOvernight(t *testing.T) {
	w := Window{OpensAt: "8:00 PM", ClosesAt: "2:00 AM", IsAlwaysOpen: boolPtr(false)}

	assert.True(t, IsOpen(w, at(23, 0)))
	assert.True(t, IsOpen(w, at(20, 0)))
	assert.True(t, IsOpen(w, at(1, 59)))
	assert.False(t, IsOpen(w, at(2, 0)))
	assert.False(t, IsOpen(w, at(10, 0)))
}

func TestIsOpenSameDay(t *testing.T) {
	w := Window{OpensAt: "9:00 AM", ClosesAt: "5:00 PM"}

	assert.False(t, IsOpen(w, at(8, 59)))
	assert.True(t, IsOpen(w, at(9, 0)))
	assert.True(t, IsOpen(w, at(16, 59)))
	assert.False(t, IsOpen(w, at(17, 0)))
}

func TestIsOpenAlwaysOpen(t *testing.T) {
	w := Window{OpensAt: "9 AM", ClosesAt: "5 PM", IsAlwaysOpen: boolPtr(true)}
	for h := 0; h < 24; h++ {
		assert.True(t, IsOpen(w, at(h, 30)))
	}
}

func TestIsOpenFailsOpen(t *testing.T) {
	assert.True(t, IsOpen(Window{OpensAt: "9:00 AM"}, at(3, 0)))
	assert.True(t, IsOpen(Window{ClosesAt: "9:00 AM", IsAlwaysOpen: boolPtr(false)}, at(12, 0)))
	assert.True(t, IsOpen(Window{OpensAt: "21:00", ClosesAt: "2:00 AM"}, at(12, 0)))
}

func TestIsOpenUsesLocation(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*60*60)
	w := Window{OpensAt: "8:00 PM", ClosesAt: "2:00 AM"}

	// 16:00 UTC is 21:00 in Karachi
	now := time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC)
	assert.False(t, IsOpen(w, now))
	assert.True(t, IsOpen(w, now.In(karachi)))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Window{OpensAt: "8:00 PM", ClosesAt: "2:00 AM"}))
	assert.NoError(t, Validate(Window{}))
	assert.NoError(t, Validate(Window{OpensAt: "whenever", IsAlwaysOpen: boolPtr(true)}))
	assert.Error(t, Validate(Window{OpensAt: "8:00", ClosesAt: "2:00 AM"}))
	assert.Error(t, Validate(Window{OpensAt: "8:00 PM", ClosesAt: "26:00"}))
}

func TestStatus(t *testing.T) {
	s := Status(Window{OpensAt: "8:00 PM", ClosesAt: "2:00 AM"}, at(10, 0))
	assert.Equal(t, Availability{IsOpen: false, OpensAt: "8:00 PM", ClosesAt: "2:00 AM"}, s)

	s = Status(Window{OpensAt: "8:00 PM", ClosesAt: "2:00 AM", IsAlwaysOpen: boolPtr(true)}, at(10, 0))
	assert.Equal(t, Availability{IsOpen: true, AlwaysOpen: true}, s)

	s = Status(Window{}, at(10, 0))
	assert.True(t, s.IsOpen)
	assert.True(t, s.AlwaysOpen)
}
