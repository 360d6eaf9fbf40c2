package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// Summarize computes the statistics of items. Stock counts follow each
// item's Status, not its Quantity.
func Summarize(items []types.InventoryItem) types.InventoryStats {
	stats := types.InventoryStats{
		TotalItems: len(items),
		TotalValue: decimal.Zero,
	}
	for _, item := range items {
		stats.TotalValue = stats.TotalValue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		switch item.Status {
		case types.StatusLow:
			stats.LowStock++
		case types.StatusOut:
			stats.OutOfStock++
		}
	}
	return stats
}
