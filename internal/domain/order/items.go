// internal/domain/order/items.go
package order

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "2x Burger (Pizza Hut)" or "2 x Burger (Pizza Hut)"
	prefixQtyPattern = regexp.MustCompile(`^(\d+)\s*[xX×]\s*(.+?)(?:\s*\(([^()]*)\))?$`)
	// "Burger x2" or "Burger (Pizza Hut) x2"
	suffixQtyPattern = regexp.MustCompile(`^(.+?)(?:\s*\(([^()]*)\))?\s*[xX×]\s*(\d+)$`)
)

// FormatItemsText renders items one per line as "<qty>x <name> (<restaurant>)"
func FormatItemsText(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		line := fmt.Sprintf("%dx %s", it.Quantity, it.Name)
		if it.Restaurant != "" {
			line += fmt.Sprintf(" (%s)", it.Restaurant)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ParseItemsText recovers items from a free-text list. Lines that match
// neither format count as one unit of the whole line.
func ParseItemsText(text string) []Item {
	var items []Item
	for _, raw := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ';' }) {
		line := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-•*"))
		if line == "" {
			continue
		}

		if m := prefixQtyPattern.FindStringSubmatch(line); m != nil {
			qty, _ := strconv.Atoi(m[1])
			items = append(items, Item{Name: strings.TrimSpace(m[2]), Quantity: qty, Restaurant: strings.TrimSpace(m[3])})
			continue
		}
		if m := suffixQtyPattern.FindStringSubmatch(line); m != nil {
			qty, _ := strconv.Atoi(m[3])
			items = append(items, Item{Name: strings.TrimSpace(m[1]), Quantity: qty, Restaurant: strings.TrimSpace(m[2])})
			continue
		}
		items = append(items, Item{Name: line, Quantity: 1})
	}
	return items
}

// Items returns the order's lines, from the structured array when present
// and otherwise parsed from the text list
func (o *Order) Items() []Item {
	if len(o.CartItemsArray) > 0 {
		return o.CartItemsArray
	}
	return ParseItemsText(o.CartItemsText)
}

// Restaurants returns the distinct restaurants an order was placed with,
// in first-seen order
func (o *Order) Restaurants() []string {
	source := []string(o.RestaurantNames)
	if len(source) == 0 {
		for _, it := range o.Items() {
			source = append(source, it.Restaurant)
		}
	}

	seen := make(map[string]bool)
	var names []string
	for _, name := range source {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
