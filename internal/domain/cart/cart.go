// internal/domain/cart/cart.go
package cart

// Cart is an ordered collection of lines keyed by (item name, restaurant label)
type Cart struct {
	Lines []Line
}

func (c *Cart) find(itemName, restaurantLabel string) int {
	for i, l := range c.Lines {
		if l.ItemName == itemName && l.RestaurantLabel == restaurantLabel {
			return i
		}
	}
	return -1
}

// Add merges one unit of item into the cart, inserting a new line if needed
func (c *Cart) Add(item Item, restaurantLabel, restaurantRef, campusRef string, meta *RestaurantMeta) {
	if i := c.find(item.Name, restaurantLabel); i >= 0 {
		c.Lines[i].Quantity++
		return
	}
	c.Lines = append(c.Lines, Line{
		ItemName:        item.Name,
		UnitPrice:       item.Price,
		Quantity:        1,
		RestaurantLabel: restaurantLabel,
		RestaurantRef:   restaurantRef,
		CampusRef:       campusRef,
		Restaurant:      meta,
	})
}

// Increment adds one unit to an existing line; unknown keys are ignored
func (c *Cart) Increment(itemName, restaurantLabel string) {
	if i := c.find(itemName, restaurantLabel); i >= 0 {
		c.Lines[i].Quantity++
	}
}

// Decrement removes one unit; a line reaching zero is dropped
func (c *Cart) Decrement(itemName, restaurantLabel string) {
	i := c.find(itemName, restaurantLabel)
	if i < 0 {
		return
	}
	c.Lines[i].Quantity--
	if c.Lines[i].Quantity <= 0 {
		c.removeAt(i)
	}
}

// Remove drops a line regardless of quantity
func (c *Cart) Remove(itemName, restaurantLabel string) {
	if i := c.find(itemName, restaurantLabel); i >= 0 {
		c.removeAt(i)
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Lines = nil
}

// Subtract takes the quantities of other's lines out of the cart, dropping
// lines that reach zero
func (c *Cart) Subtract(other *Cart) {
	for _, l := range other.Lines {
		i := c.find(l.ItemName, l.RestaurantLabel)
		if i < 0 {
			continue
		}
		c.Lines[i].Quantity -= l.Quantity
		if c.Lines[i].Quantity < 1 {
			c.removeAt(i)
		}
	}
}

func (c *Cart) removeAt(i int) {
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Total is the sum of unit price times quantity
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// Count is the number of units in the cart
func (c *Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Restaurants returns the distinct restaurant labels in first-seen order
func (c *Cart) Restaurants() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, l := range c.Lines {
		if !seen[l.RestaurantLabel] {
			seen[l.RestaurantLabel] = true
			labels = append(labels, l.RestaurantLabel)
		}
	}
	return labels
}

// CampusRefs returns the distinct non-empty campus references of the lines
func (c *Cart) CampusRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, l := range c.Lines {
		if l.CampusRef != "" && !seen[l.CampusRef] {
			seen[l.CampusRef] = true
			refs = append(refs, l.CampusRef)
		}
	}
	return refs
}

// Response builds the API view of the cart
func (c *Cart) Response() *CartResponse {
	items := c.Lines
	if items == nil {
		items = []Line{}
	}
	restaurants := c.Restaurants()
	if restaurants == nil {
		restaurants = []string{}
	}
	return &CartResponse{
		Items:       items,
		Count:       c.Count(),
		Total:       c.Total(),
		Restaurants: restaurants,
	}
}
