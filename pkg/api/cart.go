package api

import (
	"context"
	"net/http"
	"strconv"

	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/types"
)

// Item 购物车/收藏夹条目，价格为最小货币单位
type Item struct {
	ID         string           `json:"id"`
	ProductID  int64            `json:"product_id"`
	Name       string           `json:"name"`
	Price      money.Amount     `json:"price"`
	Quantity   int              `json:"quantity,omitempty"`
	Attributes types.Attributes `json:"attributes,omitempty"`
}

type itemResponse struct {
	Item      Item `json:"item"`
	CartCount int  `json:"cart_count"`
}

type listResponse struct {
	Items []Item `json:"items"`
}

type countResponse struct {
	Count int `json:"count"`
}

// cartPath 游客与登录用户使用不同的接口
func (c *Client) cartPath() string {
	if c.Session().IsGuest() {
		return "/api/guest/cart"
	}
	return "/api/cart"
}

func productPath(base string, productID int64) string {
	return base + "/" + strconv.FormatInt(productID, 10)
}

// AddCartItem 加入购物车，服务端累加数量并返回累加后的条目
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) (Item, error) {
	var resp itemResponse
	body := map[string]any{"product_id": productID, "quantity": quantity}
	if err := c.do(ctx, http.MethodPost, c.cartPath(), body, &resp); err != nil {
		return Item{}, err
	}
	if resp.Item.ProductID == 0 {
		resp.Item.ProductID = productID
	}
	return resp.Item, nil
}

// UpdateCartItem 修改数量
func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return c.do(ctx, http.MethodPatch, productPath(c.cartPath(), productID), body, nil)
}

// RemoveCartItem 删除条目
func (c *Client) RemoveCartItem(ctx context.Context, productID int64) error {
	return c.do(ctx, http.MethodDelete, productPath(c.cartPath(), productID), nil, nil)
}

// ListCart 购物车全部条目
func (c *Client) ListCart(ctx context.Context) ([]Item, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, c.cartPath(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ClearCart 清空购物车
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, c.cartPath(), nil, nil)
}

// CartCount 购物车条目数
func (c *Client) CartCount(ctx context.Context) (int, error) {
	var resp countResponse
	if err := c.do(ctx, http.MethodGet, c.cartPath()+"/count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
