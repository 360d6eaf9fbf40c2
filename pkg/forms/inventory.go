package forms

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/mesh-intelligence/studiobook/pkg/form"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

func inventory(time.Time) Definition {
	return Definition{
		Name:    Inventory,
		Title:   "Inventory Item",
		Initial: InventoryValues(types.InventoryItem{Category: types.CategoryItem, Status: types.StatusAvailable}),
		Rules: form.Rules{
			"sku":      form.Required("SKU is required"),
			"name":     form.Required("Name is required"),
			"quantity": form.All(
				form.Min(0, "Quantity must be non-negative"),
				form.Whole("Quantity must be a whole number"),
			),
			"price":    form.GreaterThan(0, "Price must be greater than 0"),
			"location": form.Required("Location is required"),
		},
	}
}

// InventoryValues returns the inventory form values for an existing item, so
// an edit starts from the item's current state.
func InventoryValues(item types.InventoryItem) form.Values {
	return form.Values{
		"sku":         item.SKU,
		"name":        item.Name,
		"description": item.Description,
		"category":    item.Category,
		"quantity":    item.Quantity,
		"price":       item.Price,
		"location":    item.Location,
		"status":      item.Status,
	}
}

// InventoryItemFromValues converts submitted inventory form values into the
// input of inventory.Store.Add. It expects values that passed the inventory
// rules; it fails when quantity is not a whole number between 0 and
// math.MaxInt or price is not a number.
func InventoryItemFromValues(v form.Values) (types.NewInventoryItem, error) {
	qty, err := toInt(v["quantity"])
	if err != nil {
		return types.NewInventoryItem{}, fmt.Errorf("quantity: %w", err)
	}
	price, err := toDecimal(v["price"])
	if err != nil {
		return types.NewInventoryItem{}, fmt.Errorf("price: %w", err)
	}
	return types.NewInventoryItem{
		SKU:         cast.ToString(v["sku"]),
		Name:        cast.ToString(v["name"]),
		Description: cast.ToString(v["description"]),
		Category:    cast.ToString(v["category"]),
		Quantity:    qty,
		Price:       price,
		Location:    cast.ToString(v["location"]),
		Status:      cast.ToString(v["status"]),
	}, nil
}

var maxQuantity = decimal.NewFromInt(math.MaxInt)

func toInt(v any) (int, error) {
	d, err := toDecimal(v)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%s is not a whole number", d)
	}
	if d.IsNegative() || d.GreaterThan(maxQuantity) {
		return 0, fmt.Errorf("%s is out of range", d)
	}
	return int(d.IntPart()), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, fmt.Errorf("%v is not a number", x)
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		return toDecimal(float64(x))
	case nil:
		return decimal.Zero, nil
	}
	s := strings.TrimSpace(cast.ToString(v))
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
