package inventory

import (
	"strings"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// Matches reports whether item passes every predicate of f: the search text
// appears in the name or SKU ignoring case, category, location and status are
// FilterAll or equal, and the price lies within PriceRange inclusive.
func Matches(f types.InventoryFilter, item types.InventoryItem) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.SKU), q) {
			return false
		}
	}
	if !matchesOrAll(f.Category, item.Category) ||
		!matchesOrAll(f.Location, item.Location) ||
		!matchesOrAll(f.Status, item.Status) {
		return false
	}
	lo, hi := f.PriceRange[0], f.PriceRange[1]
	return item.Price.GreaterThanOrEqual(lo) && item.Price.LessThanOrEqual(hi)
}

func matchesOrAll(want, got string) bool {
	return want == types.FilterAll || want == got
}

// Apply returns the items matching f, preserving order.
func Apply(f types.InventoryFilter, items []types.InventoryItem) []types.InventoryItem {
	out := make([]types.InventoryItem, 0, len(items))
	for _, item := range items {
		if Matches(f, item) {
			out = append(out, item)
		}
	}
	return out
}
