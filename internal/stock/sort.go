package stock

import (
	"fmt"
	"sort"
	"strings"
)

// Order is the display order of a stock listing.
type Order string

const (
	OrderColour   Order = "colour"
	OrderQuantity Order = "quantity" // lowest stock first
)

// ParseOrder accepts "colour" or "quantity"; empty means OrderColour.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderColour:
		return OrderColour, nil
	case OrderQuantity:
		return OrderQuantity, nil
	}
	return "", fmt.Errorf("unknown stock order %q (want colour or quantity)", s)
}

// Sort orders entries in place. Ties on quantity fall back to colour.
func Sort(entries []Entry, o Order) {
	sort.SliceStable(entries, func(i, j int) bool {
		if o == OrderQuantity && entries[i].Quantity != entries[j].Quantity {
			return entries[i].Quantity < entries[j].Quantity
		}
		return entries[i].Colour < entries[j].Colour
	})
}
