package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"katydid-storefront/pkg/cache"
	"katydid-storefront/pkg/notify"
)

// WishlistController 收藏夹页面操作
type WishlistController struct {
	app   *App
	store *cache.Store
	cart  *cache.Store
}

// WishlistController 收藏夹控制器，Bootstrap 之后可用
func (a *App) WishlistController() (*WishlistController, error) {
	if a.wishlist == nil || a.cart == nil {
		return nil, ErrNotBootstrapped
	}
	return &WishlistController{app: a, store: a.wishlist, cart: a.cart}, nil
}

// Toggle 收藏/取消收藏，返回操作后是否在收藏夹中
func (c *WishlistController) Toggle(ctx context.Context, p cache.Product) (bool, error) {
	added, err := c.store.Toggle(ctx, p)
	if err != nil {
		c.app.report(err)
		return c.store.Contains(p.ID), err
	}
	if added {
		c.app.notifier.ShowMessage("Added to wishlist", notify.LevelSuccess)
	} else {
		c.app.notifier.ShowMessage("Removed from wishlist", notify.LevelInfo)
	}
	return added, nil
}

// Remove 删除前请求确认；用户取消时返回 false
func (c *WishlistController) Remove(ctx context.Context, itemID string) (bool, error) {
	e, ok := c.store.Get(itemID)
	if !ok {
		c.app.report(cache.ErrItemNotFound)
		return false, cache.ErrItemNotFound
	}
	if !c.app.confirmer.Confirm(fmt.Sprintf("Remove %s from your wishlist?", displayName(e))) {
		return false, nil
	}
	if err := c.store.Remove(ctx, itemID); err != nil {
		c.app.report(err)
		return false, err
	}
	c.app.notifier.ShowMessage("Removed from wishlist", notify.LevelInfo)
	return true, nil
}

// MoveToCart 加入购物车后从收藏夹移除
// 加入失败时收藏夹不变；移除失败时商品同时留在两处，只提示不返回错误
func (c *WishlistController) MoveToCart(ctx context.Context, itemID string) (cache.Entry, error) {
	e, ok := c.store.Get(itemID)
	if !ok {
		c.app.report(cache.ErrItemNotFound)
		return cache.Entry{}, cache.ErrItemNotFound
	}

	added, err := c.cart.Add(ctx, cache.Product{
		ID:         e.ProductID,
		Name:       e.Name,
		UnitPrice:  e.UnitPrice,
		Attributes: e.Attributes,
	}, 1)
	if err != nil {
		c.app.report(err)
		return cache.Entry{}, err
	}

	if err := c.store.Remove(ctx, itemID); err != nil {
		c.app.logger.Warn("moved to cart but wishlist entry kept",
			zap.String("item_id", itemID), zap.Error(err))
		c.app.notifier.ShowMessage("Added to cart, but could not remove it from your wishlist", notify.LevelWarning)
		return added, nil
	}
	c.app.notifier.ShowMessage("Moved to cart", notify.LevelSuccess)
	return added, nil
}
