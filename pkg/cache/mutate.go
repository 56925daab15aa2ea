package cache

import (
	"context"

	"go.uber.org/zap"

	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/types"
)

// Product 加入缓存时本地已知的商品信息，用于乐观展示
type Product struct {
	ID         int64
	Name       string
	UnitPrice  money.Amount
	Attributes types.Attributes
}

// Add 加入商品
//
// 购物车中已有该商品时数量累加，否则以临时 ID 新建条目；数量小于 1 按 1 处理。
// 收藏夹中已有该商品时直接返回，不请求服务端。
// 服务端失败时撤销本次修改并返回 *MutationError。
func (s *Store) Add(ctx context.Context, p Product, quantity int) (Entry, error) {
	unlock, err := s.lockProduct(ctx, p.ID)
	if err != nil {
		return Entry{}, err
	}
	defer unlock()

	return s.add(ctx, p, quantity)
}

// add 调用方已持有商品锁
func (s *Store) add(ctx context.Context, p Product, quantity int) (Entry, error) {
	if s.kind.tracksQuantity() {
		quantity = max(quantity, 1)
	} else {
		quantity = 0
	}

	s.mu.Lock()
	e := s.findByProductLocked(p.ID)
	if e != nil && !s.kind.tracksQuantity() {
		out := e.clone()
		s.mu.Unlock()
		return out, nil
	}

	var prev *Entry
	if e != nil {
		before := e.clone()
		prev = &before
		e.Quantity += quantity
		if err := e.State.Transition(types.StatePending); err != nil {
			s.mu.Unlock()
			return Entry{}, err
		}
	} else {
		tempID, err := s.ids.NextTempID()
		if err != nil {
			s.mu.Unlock()
			return Entry{}, err
		}
		e = &Entry{
			ItemID:     tempID,
			ProductID:  p.ID,
			Name:       p.Name,
			Quantity:   quantity,
			UnitPrice:  p.UnitPrice,
			Selected:   true,
			AddedAt:    s.now(),
			State:      types.StatePending,
			Attributes: p.Attributes.Clone(),
		}
		s.entries = append(s.entries, e)
	}
	s.touchLocked(p.ID)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)

	item, remoteErr := s.remote.Add(ctx, p.ID, quantity)

	s.mu.Lock()
	s.touchLocked(p.ID)
	if remoteErr != nil {
		itemID := e.ItemID
		if prev == nil {
			s.settleLocked(e, types.StateRolledBack)
			s.dropLocked(e)
		} else {
			*e = *prev
		}
		snap = s.commitLocked(ctx)
		s.mu.Unlock()
		s.emit(snap)

		s.logger.Info("add rolled back",
			zap.String("kind", string(s.kind)),
			zap.Int64("product_id", p.ID),
			zap.Error(remoteErr))
		return Entry{}, &MutationError{Op: "add", ItemID: itemID, ProductID: p.ID, Err: remoteErr}
	}

	if item.ItemID != "" && item.ItemID != e.ItemID {
		s.aliases[e.ItemID] = item.ItemID
		e.ItemID = item.ItemID
	}
	if s.kind.tracksQuantity() && item.Quantity > 0 {
		e.Quantity = item.Quantity
	}
	if item.UnitPrice > 0 {
		e.UnitPrice = item.UnitPrice
	}
	if item.Name != "" {
		e.Name = item.Name
	}
	if len(item.Attributes) > 0 {
		e.Attributes = item.Attributes.Clone()
	}
	s.settleLocked(e, types.StateConfirmed)
	out := e.clone()
	snap = s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)
	return out, nil
}

// UpdateQuantity 修改数量，小于 1 按 1 处理；数量未变化时不请求服务端
// 服务端失败时恢复原数量并返回 *MutationError
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) (Entry, error) {
	if !s.kind.tracksQuantity() {
		return Entry{}, ErrUnsupported
	}
	productID, ok := s.productOf(itemID)
	if !ok {
		return Entry{}, ErrItemNotFound
	}

	unlock, err := s.lockProduct(ctx, productID)
	if err != nil {
		return Entry{}, err
	}
	defer unlock()

	return s.updateQuantity(ctx, productID, quantity)
}

// UpdateQuantityAsync 与 UpdateQuantity 相同，但立即返回
// 排队在调用时完成，同一商品的多次调用按调用顺序生效
func (s *Store) UpdateQuantityAsync(ctx context.Context, itemID string, quantity int) <-chan error {
	done := make(chan error, 1)
	if !s.kind.tracksQuantity() {
		done <- ErrUnsupported
		close(done)
		return done
	}
	productID, ok := s.productOf(itemID)
	if !ok {
		done <- ErrItemNotFound
		close(done)
		return done
	}

	t := s.locks.acquire(productKey(productID))
	go func() {
		defer close(done)

		unlock, err := t.wait(ctx)
		if err != nil {
			done <- err
			return
		}
		defer unlock()

		_, err = s.updateQuantity(ctx, productID, quantity)
		done <- err
	}()
	return done
}

func (s *Store) updateQuantity(ctx context.Context, productID int64, quantity int) (Entry, error) {
	quantity = max(quantity, 1)

	s.mu.Lock()
	e := s.findByProductLocked(productID)
	if e == nil {
		s.mu.Unlock()
		return Entry{}, ErrItemNotFound
	}
	if e.Quantity == quantity {
		out := e.clone()
		s.mu.Unlock()
		return out, nil
	}
	if err := e.State.Transition(types.StatePending); err != nil {
		s.mu.Unlock()
		return Entry{}, err
	}
	prevQuantity := e.Quantity
	e.Quantity = quantity
	sent := e.clone()
	s.touchLocked(productID)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)

	remoteErr := s.remote.UpdateQuantity(ctx, sent, quantity)

	s.mu.Lock()
	s.touchLocked(productID)
	if remoteErr != nil {
		e.Quantity = prevQuantity
	}
	s.settleLocked(e, types.StateConfirmed)
	out := e.clone()
	snap = s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)

	if remoteErr != nil {
		s.logger.Info("quantity update rolled back",
			zap.String("item_id", sent.ItemID),
			zap.Int("quantity", quantity),
			zap.Int("restored", prevQuantity),
			zap.Error(remoteErr))
		return out, &MutationError{Op: "update_quantity", ItemID: sent.ItemID, ProductID: productID, Err: remoteErr}
	}
	return out, nil
}

// Remove 删除条目
// 请求期间条目被隐藏；服务端失败时条目在原位置恢复并返回 *MutationError
func (s *Store) Remove(ctx context.Context, itemID string) error {
	productID, ok := s.productOf(itemID)
	if !ok {
		return ErrItemNotFound
	}

	unlock, err := s.lockProduct(ctx, productID)
	if err != nil {
		return err
	}
	defer unlock()

	return s.remove(ctx, productID)
}

func (s *Store) remove(ctx context.Context, productID int64) error {
	s.mu.Lock()
	e := s.findByProductLocked(productID)
	if e == nil {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	if err := e.State.Transition(types.StateRemoving); err != nil {
		s.mu.Unlock()
		return err
	}
	sent := e.clone()
	s.touchLocked(productID)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)

	remoteErr := s.remote.Remove(ctx, sent)

	s.mu.Lock()
	s.touchLocked(productID)
	if remoteErr != nil {
		s.settleLocked(e, types.StateConfirmed)
	} else {
		s.settleLocked(e, types.StateRemoved)
		s.dropLocked(e)
	}
	snap = s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)

	if remoteErr != nil {
		s.logger.Info("remove rolled back",
			zap.String("kind", string(s.kind)),
			zap.String("item_id", sent.ItemID),
			zap.Error(remoteErr))
		return &MutationError{Op: "remove", ItemID: sent.ItemID, ProductID: productID, Err: remoteErr}
	}
	return nil
}

// Toggle 商品在缓存中则删除，否则加入；返回操作后是否在缓存中
// 判断与修改在同一把商品锁内完成
func (s *Store) Toggle(ctx context.Context, p Product) (bool, error) {
	unlock, err := s.lockProduct(ctx, p.ID)
	if err != nil {
		return false, err
	}
	defer unlock()

	if s.Contains(p.ID) {
		if err := s.remove(ctx, p.ID); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := s.add(ctx, p, 1); err != nil {
		return false, err
	}
	return true, nil
}

// Clear 清空；先请求服务端，成功后才清空本地
// 同步中的条目保留，由进行中的请求决定结果
func (s *Store) Clear(ctx context.Context) error {
	if err := s.remote.Clear(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.State == types.StateConfirmed {
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	clear(s.aliases)
	s.gen++
	s.clearedGen = s.gen
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.emit(snap)
	return nil
}
