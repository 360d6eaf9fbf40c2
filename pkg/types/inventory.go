package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory categories.
const (
	CategoryItem    = "item"
	CategoryService = "service"
)

// Inventory stock statuses. Status is set by the caller and is never derived
// from Quantity.
const (
	StatusAvailable = "available"
	StatusLow       = "low"
	StatusOut       = "out"
)

// FilterAll matches every value of a filtered attribute.
const FilterAll = "all"

// InventoryKey is the KV key holding the whole inventory collection.
const InventoryKey = "inventory"

var validCategories = map[string]bool{
	CategoryItem:    true,
	CategoryService: true,
}

var validStatuses = map[string]bool{
	StatusAvailable: true,
	StatusLow:       true,
	StatusOut:       true,
}

// IsValidCategory reports whether c is a recognized inventory category.
func IsValidCategory(c string) bool { return validCategories[c] }

// IsValidStatus reports whether s is a recognized stock status.
func IsValidStatus(s string) bool { return validStatuses[s] }

// InventoryItem is a stocked product or a bookable service.
type InventoryItem struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Status      string          `json:"status"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// NewInventoryItem carries the caller-supplied fields of an item. The store
// assigns ID and LastUpdated.
type NewInventoryItem struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location"`
	Status      string          `json:"status"`
}

// InventoryPatch is a partial update. Nil fields are left unchanged.
type InventoryPatch struct {
	SKU         *string          `json:"sku,omitempty"`
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Location    *string          `json:"location,omitempty"`
	Status      *string          `json:"status,omitempty"`
}

// Apply merges the non-nil fields of p into item. ID and LastUpdated are
// never touched.
func (p InventoryPatch) Apply(item *InventoryItem) {
	if p.SKU != nil {
		item.SKU = *p.SKU
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
}

// IsEmpty reports whether the patch changes nothing.
func (p InventoryPatch) IsEmpty() bool {
	return p == InventoryPatch{}
}

// InventoryFilter is a query over the inventory collection. It is never
// persisted.
type InventoryFilter struct {
	Search     string             `json:"search"`
	Category   string             `json:"category"`
	Location   string             `json:"location"`
	Status     string             `json:"status"`
	PriceRange [2]decimal.Decimal `json:"priceRange"`
}

// DefaultInventoryFilter returns the filter every store starts with: no
// search text, every category, location and status, prices 0 to 1000.
func DefaultInventoryFilter() InventoryFilter {
	return InventoryFilter{
		Search:     "",
		Category:   FilterAll,
		Location:   FilterAll,
		Status:     FilterAll,
		PriceRange: [2]decimal.Decimal{decimal.Zero, decimal.NewFromInt(1000)},
	}
}

// InventoryStats summarizes the whole, unfiltered collection.
type InventoryStats struct {
	TotalItems int             `json:"totalItems"`
	TotalValue decimal.Decimal `json:"totalValue"`
	LowStock   int             `json:"lowStock"`
	OutOfStock int             `json:"outOfStock"`
}

// Patch returns a patch that replaces every caller-supplied field of an item
// with the values in n.
func (n NewInventoryItem) Patch() InventoryPatch {
	return InventoryPatch{
		SKU:         &n.SKU,
		Name:        &n.Name,
		Description: &n.Description,
		Category:    &n.Category,
		Quantity:    &n.Quantity,
		Price:       &n.Price,
		Location:    &n.Location,
		Status:      &n.Status,
	}
}
