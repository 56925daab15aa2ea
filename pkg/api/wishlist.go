package api

import (
	"context"
	"net/http"
)

const wishlistPath = "/api/wishlist"

// 收藏夹只对登录用户开放，游客调用时服务端返回 401

// ListWishlist 收藏夹全部条目
func (c *Client) ListWishlist(ctx context.Context) ([]Item, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, wishlistPath, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// AddWishlist 加入收藏；已收藏时服务端同样返回成功
func (c *Client) AddWishlist(ctx context.Context, productID int64) (Item, error) {
	var resp itemResponse
	if err := c.do(ctx, http.MethodPost, wishlistPath, map[string]any{"product_id": productID}, &resp); err != nil {
		return Item{}, err
	}
	if resp.Item.ProductID == 0 {
		resp.Item.ProductID = productID
	}
	return resp.Item, nil
}

// RemoveWishlist 取消收藏
func (c *Client) RemoveWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, productPath(wishlistPath, productID), nil, nil)
}

// ClearWishlist 清空收藏夹
func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, wishlistPath, nil, nil)
}

// WishlistCount 收藏数
func (c *Client) WishlistCount(ctx context.Context) (int, error) {
	var resp countResponse
	if err := c.do(ctx, http.MethodGet, wishlistPath+"/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// CheckWishlist 商品是否已收藏
func (c *Client) CheckWishlist(ctx context.Context, productID int64) (bool, error) {
	var resp struct {
		InWishlist bool `json:"in_wishlist"`
	}
	if err := c.do(ctx, http.MethodGet, productPath(wishlistPath+"/check", productID), nil, &resp); err != nil {
		return false, err
	}
	return resp.InWishlist, nil
}
