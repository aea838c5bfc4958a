package cart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMergesByKey(t *testing.T) {
	c := &Cart{}
	burger := Item{Name: "Burger", Price: 200}

	for i := 1; i <= 3; i++ {
		c.Add(burger, "Pizza Hut", "7", "1", nil)
		require.Len(t, c.Lines, 1)
		assert.Equal(t, i, c.Lines[0].Quantity)
	}

	// same item from another restaurant is a separate line
	c.Add(burger, "Hardee's", "8", "1", nil)
	assert.Len(t, c.Lines, 2)
	assert.Equal(t, []string{"Pizza Hut", "Hardee's"}, c.Restaurants())
}

func TestDecrement(t *testing.T) {
	c := &Cart{}
	c.Add(Item{Name: "Chai", Price: 60}, "Dhaba", "", "", nil)

	c.Decrement("Chai", "Nowhere")
	assert.Len(t, c.Lines, 1)

	c.Decrement("Chai", "Dhaba")
	assert.True(t, c.IsEmpty())

	c.Decrement("Chai", "Dhaba")
	assert.True(t, c.IsEmpty())
}

func TestIncrementAndRemove(t *testing.T) {
	c := &Cart{}
	c.Add(Item{Name: "Fries", Price: 150}, "Hardee's", "", "", nil)
	c.Increment("Fries", "Hardee's")
	c.Increment("Shake", "Hardee's")

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)

	c.Remove("Fries", "Hardee's")
	assert.True(t, c.IsEmpty())
}

func TestTotalTracksMutations(t *testing.T) {
	c := &Cart{}
	check := func() {
		var want float64
		for _, l := range c.Lines {
			want += l.UnitPrice * float64(l.Quantity)
		}
		assert.Equal(t, want, c.Total())
	}

	c.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "", "", nil)
	check()
	c.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "", "", nil)
	check()
	c.Add(Item{Name: "Zinger", Price: 450.5}, "KFC", "", "", nil)
	check()
	c.Increment("Zinger", "KFC")
	check()
	c.Decrement("Burger", "Pizza Hut")
	check()
	c.Remove("Zinger", "KFC")
	check()

	assert.Equal(t, 200.0, c.Total())
	assert.Equal(t, 1, c.Count())
}

func TestRoundTrip(t *testing.T) {
	is24x7 := true
	c := &Cart{}
	c.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "7", "1", &RestaurantMeta{OpenTime: "11:00 AM", CloseTime: "11:00 PM"})
	c.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "7", "1", nil)
	c.Add(Item{Name: "Water", Price: 80}, "Campus Mart", "", "1", &RestaurantMeta{Is24x7: &is24x7})

	raw, err := json.Marshal(c.Lines)
	require.NoError(t, err)

	var lines []Line
	require.NoError(t, json.Unmarshal(raw, &lines))
	assert.ElementsMatch(t, c.Lines, lines)
}

func TestSanitize(t *testing.T) {
	lines := sanitize([]Line{
		{ItemName: "Chai", RestaurantLabel: "Dhaba", Quantity: 1, UnitPrice: 60},
		{ItemName: "Chai", RestaurantLabel: "Dhaba", Quantity: 2, UnitPrice: 60},
		{ItemName: "Samosa", RestaurantLabel: "Dhaba", Quantity: 0, UnitPrice: 40},
		{ItemName: "", RestaurantLabel: "Dhaba", Quantity: 3},
	})

	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestResponseNeverNil(t *testing.T) {
	resp := (&Cart{}).Response()

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"count":0,"total":0,"restaurants":[]}`, string(raw))
}

func TestSubtractKeepsLinesAddedLater(t *testing.T) {
	ordered := &Cart{}
	ordered.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "7", "1", nil)
	ordered.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "7", "1", nil)

	c := &Cart{}
	for i := 0; i < 3; i++ {
		c.Add(Item{Name: "Burger", Price: 200}, "Pizza Hut", "7", "1", nil)
	}
	c.Add(Item{Name: "Fries", Price: 150}, "Hardee's", "8", "1", nil)

	c.Subtract(ordered)
	require.Len(t, c.Lines, 2)
	assert.Equal(t, "Burger", c.Lines[0].ItemName)
	assert.Equal(t, 1, c.Lines[0].Quantity)
	assert.Equal(t, "Fries", c.Lines[1].ItemName)

	c.Subtract(ordered)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, "Fries", c.Lines[0].ItemName)
}
