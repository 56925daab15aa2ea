package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"katydid-storefront/pkg/idgen"
	"katydid-storefront/pkg/storage"
	"katydid-storefront/pkg/types"
)

// Store 购物车/收藏夹的本地镜像
//
// 所有修改先作用于本地镜像（乐观更新）并立即写入 BlobStore，
// 再与服务端同步；同步失败时只撤销本次修改涉及的条目。
// 同一商品的修改按调用顺序串行执行，不同商品的修改可并发。
type Store struct {
	kind     Kind
	blobs    storage.BlobStore
	key      string
	remote   Remote
	logger   *zap.Logger
	ids      *idgen.Snowflake
	now      func() time.Time
	compress bool

	mu      sync.RWMutex
	entries []*Entry
	agg     Aggregate
	lastSum uint64
	// aliases 临时 ID -> 服务端 ID，调用方持有旧 ID 时仍能找到条目
	aliases map[string]string
	// gen 每次涉及服务端的修改递增；touched 记录商品最近一次修改时的 gen，
	// Refresh 据此识别列表请求发出后才发生的修改
	gen        uint64
	touched    map[int64]uint64
	clearedGen uint64

	listenerMu sync.Mutex
	listeners  map[int]func(Snapshot)
	nextID     int

	locks          *keyLock
	group          singleflight.Group
	refreshTimeout time.Duration
}

// defaultRefreshTimeout Refresh 请求与调用方取消解耦后的超时
const defaultRefreshTimeout = 30 * time.Second

// Option Store 配置项
type Option func(*Store)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithKey 覆盖默认的存储键
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithCompression 持久化时使用 snappy 压缩
func WithCompression(enabled bool) Option {
	return func(s *Store) {
		s.compress = enabled
	}
}

// WithClock 设置时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator 设置临时 ID 生成器
func WithIDGenerator(ids *idgen.Snowflake) Option {
	return func(s *Store) {
		if ids != nil {
			s.ids = ids
		}
	}
}

// WithRefreshTimeout 设置 Refresh 列表请求的超时
func WithRefreshTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.refreshTimeout = d
		}
	}
}

// DefaultKey 各类型缓存的默认存储键
func DefaultKey(kind Kind) string {
	if kind == KindWishlist {
		return storage.KeyWishlist
	}
	return storage.KeyCart
}

// Open 从 BlobStore 加载镜像
// 数据不存在时从空镜像开始；数据损坏时记录警告后同样从空镜像开始
func Open(ctx context.Context, kind Kind, blobs storage.BlobStore, remote Remote, opts ...Option) (*Store, error) {
	if kind != KindCart && kind != KindWishlist {
		return nil, errors.New("cache: unknown kind " + string(kind))
	}
	if blobs == nil || remote == nil {
		return nil, errors.New("cache: blob store and remote are required")
	}

	s := &Store{
		kind:      kind,
		blobs:     blobs,
		key:       DefaultKey(kind),
		remote:    remote,
		logger:    zap.NewNop(),
		now:       time.Now,
		aliases:   make(map[string]string),
		touched:   make(map[int64]uint64),
		listeners: make(map[int]func(Snapshot)),
		locks:     newKeyLock(),

		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = idgen.Default()
	}

	data, err := blobs.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, err
	}

	b, err := decodeBlob(data)
	if err != nil {
		s.logger.Warn("discarding unreadable cache blob",
			zap.String("kind", string(kind)),
			zap.String("key", s.key),
			zap.Error(err))
		return s, nil
	}
	s.entries = normalize(kind, b.Entries)
	s.agg = computeAggregate(kind, s.entries)
	s.lastSum = checksum(data)
	return s, nil
}

// Kind 缓存类型
func (s *Store) Kind() Kind {
	return s.kind
}

// Entries 可见条目的副本，按加入顺序
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleLocked()
}

// Get 按条目 ID 查找可见条目
func (s *Store) Get(itemID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.findByItemLocked(itemID); e != nil {
		return e.clone(), true
	}
	return Entry{}, false
}

// Contains 商品是否在缓存中（删除中的不算）
func (s *Store) Contains(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findByProductLocked(productID) != nil
}

// Aggregate 当前汇总
func (s *Store) Aggregate() Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.agg
}

// Snapshot 当前快照
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// RecomputeAggregate 按当前条目重新计算汇总，结果只取决于条目本身
func (s *Store) RecomputeAggregate() Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agg = computeAggregate(s.kind, s.entries)
	return s.agg
}

// OnChange 订阅变更，返回取消订阅函数
// 回调在锁外执行，可以在回调中读取 Store
func (s *Store) OnChange(fn func(Snapshot)) func() {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

// SetSelected 勾选/取消勾选，仅影响本地
func (s *Store) SetSelected(ctx context.Context, itemID string, selected bool) error {
	s.mu.Lock()
	e := s.findByItemLocked(itemID)
	if e == nil {
		s.mu.Unlock()
		return ErrItemNotFound
	}
	e.Selected = selected
	snap := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// SelectAll 全选/全不选
func (s *Store) SelectAll(ctx context.Context, selected bool) {
	s.mu.Lock()
	for _, e := range s.entries {
		if e.State.IsVisible() {
			e.Selected = selected
		}
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(snap)
}

// SelectedIDs 已勾选条目的 ID
func (s *Store) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if e.State.IsVisible() && e.Selected {
			ids = append(ids, e.ItemID)
		}
	}
	return ids
}

// Refresh 用服务端列表重建镜像
// 已确认的条目以服务端为准，勾选状态与加入时间沿用本地；
// 同步中的条目，以及列表请求发出后本地又修改过的商品，保留本地版本；
// 列表请求发出后执行过 Clear 时整份列表作废。
// 并发调用合并为一次请求；某个调用方取消只影响它自己的等待。
func (s *Store) Refresh(ctx context.Context) error {
	ch := s.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refreshTimeout)
		defer cancel()
		return nil, s.refresh(rctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context) error {
	s.mu.RLock()
	start := s.gen
	s.mu.RUnlock()

	items, err := s.remote.List(ctx)

	s.mu.Lock()
	// 同一时刻只有一次 Refresh，本次结束后旧的修改记录不再需要
	touched := s.touched
	s.touched = make(map[int64]uint64)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.clearedGen > start {
		s.mu.Unlock()
		s.logger.Debug("discarding list fetched before clear", zap.String("kind", string(s.kind)))
		return nil
	}
	changed := func(productID int64) bool {
		return touched[productID] > start
	}

	local := make(map[int64]*Entry, len(s.entries))
	for _, e := range s.entries {
		local[e.ProductID] = e
	}

	rebuilt := make([]*Entry, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if seen[item.ProductID] || changed(item.ProductID) {
			continue
		}
		seen[item.ProductID] = true

		if old, ok := local[item.ProductID]; ok && old.State != types.StateConfirmed {
			rebuilt = append(rebuilt, old)
			continue
		}
		e := s.fromRemote(item)
		if old, ok := local[item.ProductID]; ok {
			e.Selected = old.Selected
			e.AddedAt = old.AddedAt
		}
		rebuilt = append(rebuilt, e)
	}
	for _, e := range s.entries {
		if seen[e.ProductID] {
			continue
		}
		if e.State != types.StateConfirmed || changed(e.ProductID) {
			rebuilt = append(rebuilt, e)
		}
	}
	s.entries = rebuilt
	snap := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

func (s *Store) fromRemote(item RemoteItem) *Entry {
	e := &Entry{
		ItemID:     item.ItemID,
		ProductID:  item.ProductID,
		Name:       item.Name,
		UnitPrice:  item.UnitPrice,
		Selected:   true,
		AddedAt:    s.now(),
		State:      types.StateConfirmed,
		Attributes: item.Attributes.Clone(),
	}
	if s.kind.tracksQuantity() {
		e.Quantity = max(item.Quantity, 1)
	}
	if e.ItemID == "" {
		e.ItemID = strconv.FormatInt(item.ProductID, 10)
	}
	return e
}

func (s *Store) visibleLocked() []Entry {
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.State.IsVisible() {
			out = append(out, e.clone())
		}
	}
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Kind: s.kind, Entries: s.visibleLocked(), Aggregate: s.agg}
}

func (s *Store) findByItemLocked(itemID string) *Entry {
	if id, ok := s.aliases[itemID]; ok {
		itemID = id
	}
	for _, e := range s.entries {
		if e.ItemID == itemID && e.State.IsVisible() {
			return e
		}
	}
	return nil
}

func (s *Store) findByProductLocked(productID int64) *Entry {
	for _, e := range s.entries {
		if e.ProductID == productID && e.State.IsVisible() {
			return e
		}
	}
	return nil
}

func (s *Store) dropLocked(target *Entry) {
	for i, e := range s.entries {
		if e == target {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	for tmp, id := range s.aliases {
		if id == target.ItemID {
			delete(s.aliases, tmp)
		}
	}
}

// touchLocked 记录一次涉及服务端的商品修改
func (s *Store) touchLocked(productID int64) {
	s.gen++
	s.touched[productID] = s.gen
}

// settleLocked 执行状态转换；转换表不允许时记录日志，状态保持不变
func (s *Store) settleLocked(e *Entry, next types.EntryState) {
	if err := e.State.Transition(next); err != nil {
		s.logger.Debug("unexpected entry state transition",
			zap.String("kind", string(s.kind)),
			zap.String("item_id", e.ItemID),
			zap.Error(err))
	}
}

// commitLocked 重算汇总、写入 BlobStore 并返回快照
// 写入失败只记录日志，本地镜像仍然有效
func (s *Store) commitLocked(ctx context.Context) Snapshot {
	s.agg = computeAggregate(s.kind, s.entries)
	s.persistLocked(context.WithoutCancel(ctx))
	return s.snapshotLocked()
}

func (s *Store) persistLocked(ctx context.Context) {
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e.clone())
	}
	data, err := encodeBlob(blob{
		Version:   blobVersion,
		Kind:      s.kind,
		Entries:   entries,
		Aggregate: s.agg,
		SavedAt:   s.now(),
	}, s.compress)
	if err != nil {
		s.logger.Error("encode cache blob failed", zap.String("kind", string(s.kind)), zap.Error(err))
		return
	}

	// 其他进程（另一个标签页/实例）写过同一个键时，后写者覆盖
	if s.lastSum != 0 {
		if current, err := s.blobs.Get(ctx, s.key); err == nil && checksum(current) != s.lastSum {
			s.logger.Warn("cache blob changed by another writer, overwriting",
				zap.String("kind", string(s.kind)),
				zap.String("key", s.key))
		}
	}

	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		s.logger.Error("persist cache blob failed",
			zap.String("kind", string(s.kind)),
			zap.String("key", s.key),
			zap.Error(err))
		return
	}
	s.lastSum = checksum(data)
}

func (s *Store) emit(snap Snapshot) {
	s.listenerMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) lockProduct(ctx context.Context, productID int64) (func(), error) {
	return s.locks.Lock(ctx, productKey(productID))
}

func productKey(productID int64) string {
	return strconv.FormatInt(productID, 10)
}

// productOf 条目 ID 对应的商品
func (s *Store) productOf(itemID string) (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.findByItemLocked(itemID); e != nil {
		return e.ProductID, true
	}
	return 0, false
}
