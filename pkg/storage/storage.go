// Package storage 本地持久化的键值存储（浏览器 localStorage 的对应物）
//
// 缓存层只把整个购物车/收藏夹序列化成一个 blob 写入固定的键，
// 因此这里只需要 Get/Set/Delete 三个操作。
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// 缓存使用的固定键
const (
	KeyCart     = "storefront.cart"
	KeyWishlist = "storefront.wishlist"
)

var (
	// ErrNotFound 键不存在
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnknownDriver 未知的存储驱动
	ErrUnknownDriver = errors.New("storage: unknown driver")
	// ErrEmptyKey 键为空
	ErrEmptyKey = errors.New("storage: empty key")
)

// BlobStore 键值 blob 存储
type BlobStore interface {
	// Get 读取，键不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Set 覆盖写入
	Set(ctx context.Context, key string, value []byte) error
	// Delete 删除，键不存在时不报错
	Delete(ctx context.Context, key string) error
	// Close 释放底层连接
	Close() error
}

// 驱动名
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options 打开存储的参数
type Options struct {
	Driver    string
	DSN       string // sqlite 文件路径或 mysql/postgres DSN
	RedisAddr string
	RedisDB   int
	Prefix    string // redis 键前缀
}

// Open 按驱动名创建存储
func Open(ctx context.Context, opts Options) (BlobStore, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		r, err := DialRedis(ctx, opts.RedisAddr, opts.RedisDB, opts.Prefix)
		if err != nil {
			return nil, err
		}
		return r, nil
	case DriverSQLite, DriverMySQL, DriverPostgres:
		s, err := OpenSQL(opts.Driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
