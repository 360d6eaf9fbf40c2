package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/studiobook/pkg/form"
	"github.com/mesh-intelligence/studiobook/pkg/forms"
	"github.com/mesh-intelligence/studiobook/pkg/inventory"
	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// itemFlags are the inventory form fields bound to command line flags.
var itemFlags = []struct {
	name, usage string
}{
	{"sku", "stock keeping unit"},
	{"name", "item name"},
	{"description", "description"},
	{"category", "category: item or service"},
	{"quantity", "quantity on hand"},
	{"price", "unit price"},
	{"location", "storage location"},
	{"status", "stock status: available, low or out"},
}

func newInventoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Manage products and services",
	}
	cmd.AddCommand(newInventoryAddCmd(a))
	cmd.AddCommand(newInventoryListCmd(a))
	cmd.AddCommand(newInventoryStatsCmd(a))
	cmd.AddCommand(newInventoryUpdateCmd(a))
	cmd.AddCommand(newInventoryDeleteCmd(a))
	return cmd
}

// withStore attaches the backend, runs fn with an inventory store over it,
// and detaches.
func (a *app) withStore(fn func(s *inventory.Store) error) error {
	backend, err := a.attach()
	if err != nil {
		return err
	}
	defer backend.Detach()
	return fn(inventory.New(backend, inventory.WithLogger(a.log)))
}

// bindItemFlags registers one string flag per inventory form field. Values
// stay strings so the form rules see exactly what the user typed.
func bindItemFlags(cmd *cobra.Command, defaults map[string]string) map[string]*string {
	vals := make(map[string]*string, len(itemFlags))
	for _, f := range itemFlags {
		vals[f.name] = cmd.Flags().String(f.name, defaults[f.name], f.usage)
	}
	return vals
}

// changedItemValues returns the flags the user set, as form values.
func changedItemValues(cmd *cobra.Command, vals map[string]*string) form.Values {
	out := form.Values{}
	for _, f := range itemFlags {
		if cmd.Flags().Changed(f.name) {
			out[f.name] = *vals[f.name]
		}
	}
	return out
}

// checkEnums rejects categories and statuses the store does not know.
func checkEnums(n types.NewInventoryItem) error {
	if !types.IsValidCategory(n.Category) {
		return userErrorf("unknown category %q (valid: %s, %s)", n.Category, types.CategoryItem, types.CategoryService)
	}
	if !types.IsValidStatus(n.Status) {
		return userErrorf("unknown status %q (valid: %s, %s, %s)", n.Status, types.StatusAvailable, types.StatusLow, types.StatusOut)
	}
	return nil
}

func (a *app) printItem(w io.Writer, item types.InventoryItem) error {
	if a.flags.jsonMode {
		return printJSON(w, item)
	}
	fmt.Fprintln(w, item.ID)
	return nil
}

func newInventoryAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item",
		Long: `Add validates the item through the inventory form and stores it.

Example:
  studio inventory add --sku SH-001 --name "Argan Shampoo" --quantity 10 --price 12.50 --location "Shelf A"`,
		Args: cobra.NoArgs,
	}
	vals := bindItemFlags(cmd, map[string]string{
		"category": types.CategoryItem,
		"status":   types.StatusAvailable,
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		def, _ := forms.Lookup(forms.Inventory)
		return a.withStore(func(s *inventory.Store) error {
			var added types.InventoryItem
			f := def.New(func(data form.Values) error {
				n, err := forms.InventoryItemFromValues(data)
				if err != nil {
					return userError(err)
				}
				if err := checkEnums(n); err != nil {
					return err
				}
				added, err = s.Add(n)
				return err
			})
			values := form.Values{}
			for _, fl := range itemFlags {
				values[fl.name] = *vals[fl.name]
			}
			f.Fill(values)

			if err := f.Submit(); err != nil {
				if errors.Is(err, form.ErrInvalid) {
					return a.reportInvalid(cmd, f)
				}
				return err
			}
			return a.printItem(cmd.OutOrStdout(), added)
		})
	}
	return cmd
}

func newInventoryUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of an item",
		Long: `Update starts from the item's current values, applies the given flags,
and validates the result through the inventory form.

Example:
  studio inventory update 0190f6c2-... --quantity 0 --status out`,
		Args: cobra.ExactArgs(1),
	}
	vals := bindItemFlags(cmd, nil)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id := args[0]
		changes := changedItemValues(cmd, vals)
		if len(changes) == 0 {
			return userErrorf("nothing to update")
		}
		def, _ := forms.Lookup(forms.Inventory)

		return a.withStore(func(s *inventory.Store) error {
			item, ok := s.Get(id)
			if !ok {
				return userErrorf("item %q not found", id)
			}
			f := form.New(forms.InventoryValues(item), func(data form.Values) error {
				n, err := forms.InventoryItemFromValues(data)
				if err != nil {
					return userError(err)
				}
				if err := checkEnums(n); err != nil {
					return err
				}
				return s.Update(id, n.Patch())
			}, def.Rules)
			f.Fill(changes)

			if err := f.Submit(); err != nil {
				if errors.Is(err, form.ErrInvalid) {
					return a.reportInvalid(cmd, f)
				}
				return err
			}
			updated, _ := s.Get(id)
			return a.printItem(cmd.OutOrStdout(), updated)
		})
	}
	return cmd
}

func newInventoryDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !yes {
				return userErrorf("refusing to delete %s without --yes", id)
			}
			return a.withStore(func(s *inventory.Store) error {
				if _, ok := s.Get(id); !ok {
					return userErrorf("item %q not found", id)
				}
				if err := s.Remove(id); err != nil {
					return err
				}
				if !a.flags.jsonMode {
					fmt.Fprintln(cmd.OutOrStdout(), "deleted", id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

func newInventoryListCmd(a *app) *cobra.Command {
	var search, category, location, status, minPrice, maxPrice string
	def := types.DefaultInventoryFilter()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items matching a filter",
		Long: `List prints the items that match every given filter. Search matches the
name or SKU ignoring case; the price range is inclusive.

Example:
  studio inventory list --search shampoo --status low
  studio inventory list --min-price 10 --max-price 50 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lo, err := decimal.NewFromString(minPrice)
			if err != nil {
				return userErrorf("invalid --min-price %q", minPrice)
			}
			hi, err := decimal.NewFromString(maxPrice)
			if err != nil {
				return userErrorf("invalid --max-price %q", maxPrice)
			}
			filter := types.InventoryFilter{
				Search:     search,
				Category:   category,
				Location:   location,
				Status:     status,
				PriceRange: [2]decimal.Decimal{lo, hi},
			}

			return a.withStore(func(s *inventory.Store) error {
				s.SetFilter(filter)
				items := s.Items()
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), items)
				}
				printItemTable(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&search, "search", def.Search, "text to find in name or SKU")
	fl.StringVar(&category, "category", def.Category, "category or all")
	fl.StringVar(&location, "location", def.Location, "location or all")
	fl.StringVar(&status, "status", def.Status, "status or all")
	fl.StringVar(&minPrice, "min-price", def.PriceRange[0].String(), "lowest price")
	fl.StringVar(&maxPrice, "max-price", def.PriceRange[1].String(), "highest price")
	return cmd
}

// printItemTable prints items in a human-readable table.
func printItemTable(w io.Writer, items []types.InventoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tNAME\tCATEGORY\tQTY\tPRICE\tLOCATION\tSTATUS")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			it.ID, it.SKU, it.Name, it.Category, it.Quantity, it.Price.StringFixed(2), it.Location, it.Status)
	}
	tw.Flush()
}

func newInventoryStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the whole inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(func(s *inventory.Store) error {
				stats := s.Stats()
				out := cmd.OutOrStdout()
				if a.flags.jsonMode {
					return printJSON(out, stats)
				}
				fmt.Fprintf(out, "Total items:  %d\n", stats.TotalItems)
				fmt.Fprintf(out, "Total value:  %s\n", stats.TotalValue.StringFixed(2))
				fmt.Fprintf(out, "Low stock:    %d\n", stats.LowStock)
				fmt.Fprintf(out, "Out of stock: %d\n", stats.OutOfStock)
				return nil
			})
		},
	}
}
