package api

import (
	"context"

	"katydid-storefront/pkg/cache"
)

// CartRemote 把购物车接口适配为 cache.Remote
type CartRemote struct {
	client *Client
}

// WishlistRemote 把收藏夹接口适配为 cache.Remote
type WishlistRemote struct {
	client *Client
}

var (
	_ cache.Remote = (*CartRemote)(nil)
	_ cache.Remote = (*WishlistRemote)(nil)
)

// CartRemote 购物车同步
func (c *Client) CartRemote() *CartRemote {
	return &CartRemote{client: c}
}

// WishlistRemote 收藏夹同步
func (c *Client) WishlistRemote() *WishlistRemote {
	return &WishlistRemote{client: c}
}

func (it Item) remote() cache.RemoteItem {
	return cache.RemoteItem{
		ItemID:     it.ID,
		ProductID:  it.ProductID,
		Name:       it.Name,
		Quantity:   it.Quantity,
		UnitPrice:  it.Price,
		Attributes: it.Attributes,
	}
}

func remoteItems(items []Item) []cache.RemoteItem {
	out := make([]cache.RemoteItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.remote())
	}
	return out
}

func (r *CartRemote) Add(ctx context.Context, productID int64, quantity int) (cache.RemoteItem, error) {
	item, err := r.client.AddCartItem(ctx, productID, quantity)
	if err != nil {
		return cache.RemoteItem{}, err
	}
	return item.remote(), nil
}

func (r *CartRemote) UpdateQuantity(ctx context.Context, entry cache.Entry, quantity int) error {
	return r.client.UpdateCartItem(ctx, entry.ProductID, quantity)
}

func (r *CartRemote) Remove(ctx context.Context, entry cache.Entry) error {
	return r.client.RemoveCartItem(ctx, entry.ProductID)
}

func (r *CartRemote) List(ctx context.Context) ([]cache.RemoteItem, error) {
	items, err := r.client.ListCart(ctx)
	if err != nil {
		return nil, err
	}
	return remoteItems(items), nil
}

func (r *CartRemote) Clear(ctx context.Context) error {
	return r.client.ClearCart(ctx)
}

// Add 收藏夹不记录数量，quantity 被忽略
func (r *WishlistRemote) Add(ctx context.Context, productID int64, _ int) (cache.RemoteItem, error) {
	item, err := r.client.AddWishlist(ctx, productID)
	if err != nil {
		return cache.RemoteItem{}, err
	}
	return item.remote(), nil
}

// UpdateQuantity 收藏夹不支持修改数量
func (r *WishlistRemote) UpdateQuantity(context.Context, cache.Entry, int) error {
	return cache.ErrUnsupported
}

func (r *WishlistRemote) Remove(ctx context.Context, entry cache.Entry) error {
	return r.client.RemoveWishlist(ctx, entry.ProductID)
}

func (r *WishlistRemote) List(ctx context.Context) ([]cache.RemoteItem, error) {
	items, err := r.client.ListWishlist(ctx)
	if err != nil {
		return nil, err
	}
	return remoteItems(items), nil
}

func (r *WishlistRemote) Clear(ctx context.Context) error {
	return r.client.ClearWishlist(ctx)
}
