package cache

import (
	"context"

	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/types"
)

// RemoteItem 服务端返回的条目
type RemoteItem struct {
	ItemID     string
	ProductID  int64
	Name       string
	Quantity   int
	UnitPrice  money.Amount
	Attributes types.Attributes
}

// Remote 服务端同步接口
//
// 实现方应在服务端拒绝时返回带有 UserMessage() string 方法的错误，
// 该提示会原样展示给用户。
type Remote interface {
	// Add 加入商品；购物车在服务端累加数量，返回累加后的条目
	Add(ctx context.Context, productID int64, quantity int) (RemoteItem, error)
	// UpdateQuantity 修改数量
	UpdateQuantity(ctx context.Context, entry Entry, quantity int) error
	// Remove 删除条目
	Remove(ctx context.Context, entry Entry) error
	// List 服务端当前的全部条目
	List(ctx context.Context) ([]RemoteItem, error)
	// Clear 清空
	Clear(ctx context.Context) error
}
