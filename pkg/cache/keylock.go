package cache

import (
	"context"
	"sync"
)

// keyLock 按键串行化：同一商品的修改按排队顺序一个接一个执行，不同商品互不阻塞
// 排队（acquire）与等待（wait）分开，异步调用可以在调用方 goroutine 中先占位
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	held    bool
	waiters []chan struct{}
}

// ticket 排队凭证
type ticket struct {
	k     *keyLock
	key   string
	ready chan struct{}
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*keyLockEntry)}
}

// acquire 排队，不阻塞
func (k *keyLock) acquire(key string) *ticket {
	k.mu.Lock()
	defer k.mu.Unlock()

	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLockEntry{}
		k.locks[key] = entry
	}
	t := &ticket{k: k, key: key, ready: make(chan struct{})}
	if !entry.held {
		entry.held = true
		close(t.ready)
	} else {
		entry.waiters = append(entry.waiters, t.ready)
	}
	return t
}

// Lock 排队并等待，返回解锁函数
func (k *keyLock) Lock(ctx context.Context, key string) (func(), error) {
	return k.acquire(key).wait(ctx)
}

// wait 等到轮到自己；ctx 取消时退出队列
func (t *ticket) wait(ctx context.Context) (func(), error) {
	select {
	case <-t.ready:
		return t.unlockFunc(), nil
	case <-ctx.Done():
	}

	k := t.k
	k.mu.Lock()
	select {
	case <-t.ready:
		// 取消的同时恰好轮到自己，把锁交给下一个
		k.mu.Unlock()
		t.unlockFunc()()
		return nil, ctx.Err()
	default:
	}
	if entry, ok := k.locks[t.key]; ok {
		for i, ch := range entry.waiters {
			if ch == t.ready {
				entry.waiters = append(entry.waiters[:i], entry.waiters[i+1:]...)
				break
			}
		}
	}
	k.mu.Unlock()
	return nil, ctx.Err()
}

func (t *ticket) unlockFunc() func() {
	var once sync.Once
	return func() {
		once.Do(t.k.handoff(t.key))
	}
}

func (k *keyLock) handoff(key string) func() {
	return func() {
		k.mu.Lock()
		defer k.mu.Unlock()

		entry, ok := k.locks[key]
		if !ok {
			return
		}
		if len(entry.waiters) > 0 {
			next := entry.waiters[0]
			entry.waiters = entry.waiters[1:]
			close(next)
			return
		}
		entry.held = false
		delete(k.locks, key)
	}
}

// size 当前持有或等待中的键数量
func (k *keyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
