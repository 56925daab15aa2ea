package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"katydid-storefront/pkg/api"
	"katydid-storefront/pkg/cache"
	"katydid-storefront/pkg/notify"
)

// CartController 购物车页面操作
//
// 失败时已经向用户展示了提示，返回的 error 只用于调用方判断结果。
type CartController struct {
	app   *App
	store *cache.Store
}

// CartController 购物车控制器，Bootstrap 之后可用
func (a *App) CartController() (*CartController, error) {
	if a.cart == nil {
		return nil, ErrNotBootstrapped
	}
	return &CartController{app: a, store: a.cart}, nil
}

// Add 加入购物车
func (c *CartController) Add(ctx context.Context, p cache.Product, quantity int) (cache.Entry, error) {
	e, err := c.store.Add(ctx, p, quantity)
	if err != nil {
		c.app.report(err)
		return cache.Entry{}, err
	}
	c.app.notifier.ShowMessage("Product added to cart", notify.LevelSuccess)
	return e, nil
}

// Increment 数量加一
func (c *CartController) Increment(ctx context.Context, itemID string) (cache.Entry, error) {
	return c.step(ctx, itemID, 1)
}

// Decrement 数量减一，最少为 1
func (c *CartController) Decrement(ctx context.Context, itemID string) (cache.Entry, error) {
	return c.step(ctx, itemID, -1)
}

func (c *CartController) step(ctx context.Context, itemID string, delta int) (cache.Entry, error) {
	e, ok := c.store.Get(itemID)
	if !ok {
		c.app.report(cache.ErrItemNotFound)
		return cache.Entry{}, cache.ErrItemNotFound
	}
	return c.SetQuantity(ctx, itemID, e.Quantity+delta)
}

// SetQuantity 修改数量
func (c *CartController) SetQuantity(ctx context.Context, itemID string, quantity int) (cache.Entry, error) {
	e, err := c.store.UpdateQuantity(ctx, itemID, quantity)
	if err != nil {
		c.app.report(err)
		return e, err
	}
	return e, nil
}

// Remove 删除前请求确认；用户取消时返回 false
func (c *CartController) Remove(ctx context.Context, itemID string) (bool, error) {
	e, ok := c.store.Get(itemID)
	if !ok {
		c.app.report(cache.ErrItemNotFound)
		return false, cache.ErrItemNotFound
	}
	if !c.app.confirmer.Confirm(fmt.Sprintf("Remove %s from your cart?", displayName(e))) {
		return false, nil
	}
	if err := c.store.Remove(ctx, itemID); err != nil {
		c.app.report(err)
		return false, err
	}
	c.app.notifier.ShowMessage("Item removed from cart", notify.LevelInfo)
	return true, nil
}

// SetSelected 勾选/取消勾选参与结算的条目
func (c *CartController) SetSelected(ctx context.Context, itemID string, selected bool) error {
	if err := c.store.SetSelected(ctx, itemID, selected); err != nil {
		c.app.report(err)
		return err
	}
	return nil
}

// SelectAll 全选/全不选
func (c *CartController) SelectAll(ctx context.Context, selected bool) {
	c.store.SelectAll(ctx, selected)
}

// Checkout 校验会话并返回参与结算的条目 ID
func (c *CartController) Checkout(_ context.Context) ([]string, error) {
	session := c.app.client.Session()
	switch {
	case session.IsGuest():
		c.app.notifier.ShowModal(notify.ModalLogin)
		c.app.notifier.ShowMessage("Please login to checkout", notify.LevelWarning)
		return nil, ErrLoginRequired
	case session.Role == api.RoleAdmin:
		c.app.notifier.ShowMessage("Admin accounts cannot place orders", notify.LevelError)
		return nil, ErrForbidden
	}

	ids := c.store.SelectedIDs()
	if len(ids) == 0 {
		c.app.notifier.ShowMessage("Please select at least one item to checkout", notify.LevelWarning)
		return nil, ErrNothingSelected
	}
	c.app.logger.Info("checkout",
		zap.String("subject", session.Subject),
		zap.Strings("item_ids", ids),
		zap.Int64("total", int64(c.store.Aggregate().Total)))
	return ids, nil
}

// Summary 如 "3 items, total Rp 150.000"
func (c *CartController) Summary() string {
	agg := c.store.Aggregate()
	unit := "items"
	if agg.ItemCount == 1 {
		unit = "item"
	}
	return fmt.Sprintf("%d %s, total %s", agg.ItemCount, unit, agg.Total.Format(c.app.currency))
}

func displayName(e cache.Entry) string {
	if e.Name != "" {
		return e.Name
	}
	return "this item"
}
