package cache

import (
	"time"

	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/types"
)

// Kind 缓存类型
type Kind string

const (
	KindCart     Kind = "cart"
	KindWishlist Kind = "wishlist"
)

// tracksQuantity 购物车记录数量，收藏夹只记录是否收藏
func (k Kind) tracksQuantity() bool {
	return k == KindCart
}

// Entry 缓存中的一个条目
// ItemID 在服务端确认前是 "tmp-" 开头的临时 ID
type Entry struct {
	ItemID     string           `json:"item_id"`
	ProductID  int64            `json:"product_id"`
	Name       string           `json:"name,omitempty"`
	Quantity   int              `json:"quantity,omitempty"`
	UnitPrice  money.Amount     `json:"unit_price"`
	Selected   bool             `json:"selected"`
	AddedAt    time.Time        `json:"added_at"`
	State      types.EntryState `json:"state"`
	Attributes types.Attributes `json:"attributes,omitempty"`
}

// Subtotal 单价 × 数量，收藏夹条目数量按 1 计
func (e Entry) Subtotal() money.Amount {
	if e.Quantity < 1 {
		return e.UnitPrice
	}
	return e.UnitPrice.Mul(e.Quantity)
}

func (e *Entry) clone() Entry {
	c := *e
	c.Attributes = e.Attributes.Clone()
	return c
}

// Aggregate 汇总信息（角标、合计）
type Aggregate struct {
	// Total 已勾选条目的金额合计
	Total money.Amount `json:"total"`
	// ItemCount 购物车为数量之和，收藏夹为条目数
	ItemCount int `json:"item_count"`
	// SelectedCount 已勾选的条目数
	SelectedCount int `json:"selected_count"`
}

// Snapshot 某一时刻可见条目与汇总的副本
type Snapshot struct {
	Kind      Kind      `json:"kind"`
	Entries   []Entry   `json:"entries"`
	Aggregate Aggregate `json:"aggregate"`
}

// computeAggregate 只统计可见条目（删除中的条目不计入）
func computeAggregate(kind Kind, entries []*Entry) Aggregate {
	var agg Aggregate
	for _, e := range entries {
		if !e.State.IsVisible() {
			continue
		}
		if kind.tracksQuantity() {
			agg.ItemCount += e.Quantity
		} else {
			agg.ItemCount++
		}
		if e.Selected {
			agg.SelectedCount++
			agg.Total += e.Subtotal()
		}
	}
	return agg
}
