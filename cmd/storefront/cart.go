package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"katydid-storefront/pkg/app"
	"katydid-storefront/pkg/cache"
	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/types"
)

var (
	addQuantity int
	addName     string
	addPrice    string
	addAttrs    []string
	selectOff   bool
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show cart items and total",
	Args:  cobra.NoArgs,
	RunE: withCart(func(cmd *cobra.Command, a *app.App, c *app.CartController, _ []string) error {
		printEntries(cmd.OutOrStdout(), a.Cart().Entries(), a.Currency(), true)
		fmt.Fprintln(cmd.OutOrStdout(), c.Summary())
		return nil
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product, merging with an existing line",
	Args:  cobra.ExactArgs(1),
	RunE: withCart(func(cmd *cobra.Command, a *app.App, c *app.CartController, args []string) error {
		p, err := productArg(a.Currency(), args[0])
		if err != nil {
			return err
		}
		if _, err := c.Add(cmd.Context(), p, addQuantity); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Summary())
		return nil
	}),
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Set the quantity of a line",
	Args:  cobra.ExactArgs(2),
	RunE: withCart(func(cmd *cobra.Command, _ *app.App, c *app.CartController, args []string) error {
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if _, err := c.SetQuantity(cmd.Context(), args[0], quantity); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Summary())
		return nil
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: withCart(func(cmd *cobra.Command, _ *app.App, c *app.CartController, args []string) error {
		_, err := c.Remove(cmd.Context(), args[0])
		return err
	}),
}

var cartSelectCmd = &cobra.Command{
	Use:   "select <item-id|all>",
	Short: "Select lines for checkout",
	Args:  cobra.ExactArgs(1),
	RunE: withCart(func(cmd *cobra.Command, _ *app.App, c *app.CartController, args []string) error {
		if args[0] == "all" {
			c.SelectAll(cmd.Context(), !selectOff)
		} else if err := c.SetSelected(cmd.Context(), args[0], !selectOff); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), c.Summary())
		return nil
	}),
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out the selected lines",
	Args:  cobra.NoArgs,
	RunE: withCart(func(cmd *cobra.Command, _ *app.App, c *app.CartController, _ []string) error {
		ids, err := c.Checkout(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "checkout: %s (%s)\n", strings.Join(ids, ", "), c.Summary())
		return nil
	}),
}

func init() {
	cartAddCmd.Flags().IntVarP(&addQuantity, "quantity", "q", 1, "quantity to add")
	cartAddCmd.Flags().StringVar(&addName, "name", "", "product name shown until the server confirms")
	cartAddCmd.Flags().StringVar(&addPrice, "price", "", "unit price shown until the server confirms, e.g. 50000 or 12.50")
	cartAddCmd.Flags().StringArrayVar(&addAttrs, "attr", nil, "variant attribute key=value, repeatable")
	cartSelectCmd.Flags().BoolVar(&selectOff, "off", false, "deselect instead")

	cartCmd.AddCommand(cartListCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartSelectCmd, cartCheckoutCmd)
	rootCmd.AddCommand(cartCmd)
}

func withCart(run func(*cobra.Command, *app.App, *app.CartController, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.CartController()
		if err != nil {
			return err
		}
		return run(cmd, a, c, args)
	}
}

// productArg 解析商品 ID 与 --name/--price/--attr
func productArg(cur money.Currency, raw string) (cache.Product, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return cache.Product{}, fmt.Errorf("invalid product id %q", raw)
	}
	p := cache.Product{ID: id, Name: addName}
	if addPrice != "" {
		if p.UnitPrice, err = money.Parse(addPrice, cur); err != nil {
			return cache.Product{}, err
		}
	}
	for _, kv := range addAttrs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return cache.Product{}, fmt.Errorf("invalid --attr %q, want key=value", kv)
		}
		p.Attributes = p.Attributes.Set(key, value)
	}
	return p, nil
}

func printEntries(out io.Writer, entries []cache.Entry, cur money.Currency, quantity bool) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "(empty)")
		return
	}
	for _, e := range entries {
		mark := " "
		if e.Selected {
			mark = "x"
		}
		line := fmt.Sprintf("[%s] %-20s %-24s %12s", mark, e.ItemID, e.Name, e.UnitPrice.Format(cur))
		if quantity {
			line += fmt.Sprintf(" x%-3d %12s", e.Quantity, e.Subtotal().Format(cur))
		}
		if e.State != types.StateConfirmed {
			line += " (" + string(e.State) + ")"
		}
		if keys := e.Attributes.Keys(); len(keys) > 0 {
			attrs := make([]string, 0, len(keys))
			for _, k := range keys {
				v, _ := e.Attributes.Get(k)
				attrs = append(attrs, k+"="+v)
			}
			line += " {" + strings.Join(attrs, ", ") + "}"
		}
		fmt.Fprintln(out, line)
	}
}
