package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/studiobook/internal/memory"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

func catalog() []types.InventoryItem {
	return []types.InventoryItem{
		{ID: "1", SKU: "SH-001", Name: "Argan Shampoo", Category: types.CategoryItem, Location: "Shelf A", Status: types.StatusAvailable, Price: price("12.00")},
		{ID: "2", SKU: "CD-002", Name: "Conditioner", Category: types.CategoryItem, Location: "Shelf B", Status: types.StatusLow, Price: price("1000")},
		{ID: "3", SKU: "SV-CUT", Name: "Haircut", Category: types.CategoryService, Location: "Studio", Status: types.StatusAvailable, Price: price("1000.01")},
		{ID: "4", SKU: "SH-010", Name: "Dry shampoo", Category: types.CategoryItem, Location: "Shelf A", Status: types.StatusOut, Price: price("0")},
	}
}

func ids(items []types.InventoryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	with := func(fn func(*types.InventoryFilter)) types.InventoryFilter {
		f := types.DefaultInventoryFilter()
		fn(&f)
		return f
	}

	tests := []struct {
		name   string
		filter types.InventoryFilter
		want   []string
	}{
		{"default keeps range 0..1000 inclusive", types.DefaultInventoryFilter(), []string{"1", "2", "4"}},
		{"search name ignores case", with(func(f *types.InventoryFilter) { f.Search = "SHAMPOO" }), []string{"1", "4"}},
		{"search sku", with(func(f *types.InventoryFilter) { f.Search = "cd-" }), []string{"2"}},
		{"category", with(func(f *types.InventoryFilter) {
			f.Category = types.CategoryService
			f.PriceRange[1] = price("2000")
		}), []string{"3"}},
		{"location", with(func(f *types.InventoryFilter) { f.Location = "Shelf A" }), []string{"1", "4"}},
		{"status", with(func(f *types.InventoryFilter) { f.Status = types.StatusOut }), []string{"4"}},
		{"conjunction", with(func(f *types.InventoryFilter) {
			f.Search = "sh"
			f.Location = "Shelf A"
			f.Status = types.StatusAvailable
		}), []string{"1"}},
		{"price min inclusive", with(func(f *types.InventoryFilter) { f.PriceRange[0] = price("12") }), []string{"1", "2"}},
		{"price above max excluded", with(func(f *types.InventoryFilter) { f.PriceRange[1] = price("999.99") }), []string{"1", "4"}},
		{"empty range", with(func(f *types.InventoryFilter) {
			f.PriceRange = [2]decimal.Decimal{price("5"), price("1")}
		}), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(tt.filter, catalog())))
		})
	}
}

func TestStoreItemsFollowFilter(t *testing.T) {
	s, _ := newTestStore(t, memory.NewAttached())
	_, _ = s.Add(shampoo())
	_, _ = s.Add(consult())

	f := types.DefaultInventoryFilter()
	f.Category = types.CategoryService
	s.SetFilter(f)

	items := s.Items()
	if assert.Len(t, items, 1) {
		assert.Equal(t, "Consultation", items[0].Name)
	}
	assert.Equal(t, f, s.Filter())
	assert.Len(t, s.All(), 2)
}
