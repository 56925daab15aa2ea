package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"katydid-storefront/pkg/app"
)

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage the wishlist (login required)",
}

var wishlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show wishlist items",
	Args:  cobra.NoArgs,
	RunE: withWishlist(func(cmd *cobra.Command, a *app.App, _ *app.WishlistController, _ []string) error {
		printEntries(cmd.OutOrStdout(), a.Wishlist().Entries(), a.Currency(), false)
		return nil
	}),
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add a product, or remove it when already saved",
	Args:  cobra.ExactArgs(1),
	RunE: withWishlist(func(cmd *cobra.Command, a *app.App, c *app.WishlistController, args []string) error {
		p, err := productArg(a.Currency(), args[0])
		if err != nil {
			return err
		}
		in, err := c.Toggle(cmd.Context(), p)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "product %d in wishlist: %t\n", p.ID, in)
		return nil
	}),
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item after confirmation",
	Args:  cobra.ExactArgs(1),
	RunE: withWishlist(func(cmd *cobra.Command, _ *app.App, c *app.WishlistController, args []string) error {
		_, err := c.Remove(cmd.Context(), args[0])
		return err
	}),
}

var wishlistMoveCmd = &cobra.Command{
	Use:   "move <item-id>",
	Short: "Move an item to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: withWishlist(func(cmd *cobra.Command, _ *app.App, c *app.WishlistController, args []string) error {
		e, err := c.MoveToCart(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cart item %s\n", e.ItemID)
		return nil
	}),
}

func init() {
	wishlistToggleCmd.Flags().StringVar(&addName, "name", "", "product name shown until the server confirms")
	wishlistToggleCmd.Flags().StringVar(&addPrice, "price", "", "unit price shown until the server confirms")

	wishlistCmd.AddCommand(wishlistListCmd, wishlistToggleCmd, wishlistRemoveCmd, wishlistMoveCmd)
	rootCmd.AddCommand(wishlistCmd)
}

func withWishlist(run func(*cobra.Command, *app.App, *app.WishlistController, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.WishlistController()
		if err != nil {
			return err
		}
		return run(cmd, a, c, args)
	}
}
