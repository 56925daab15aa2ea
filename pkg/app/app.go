// Package app 把配置、日志、API 客户端、本地缓存和用户提示组装在一起
//
// App 取代页面脚本里的全局变量：所有控制器都从同一个 App 取得依赖。
//
//	a, err := app.New(ctx, cfg)
//	if err != nil { ... }
//	defer a.Close()
//	if err := a.Bootstrap(ctx); err != nil { ... }
//	cart, _ := a.CartController()
//	cart.Add(ctx, product, 1)
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"katydid-storefront/pkg/api"
	"katydid-storefront/pkg/cache"
	"katydid-storefront/pkg/config"
	"katydid-storefront/pkg/idgen"
	"katydid-storefront/pkg/logger"
	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/notify"
	"katydid-storefront/pkg/storage"
)

// SessionKey 登录 token 在 BlobStore 中的键
const SessionKey = "storefront.session"

var (
	// ErrNotBootstrapped 缓存尚未打开
	ErrNotBootstrapped = errors.New("app: not bootstrapped")
	// ErrLoginRequired 需要登录
	ErrLoginRequired = errors.New("app: login required")
	// ErrForbidden 当前角色不允许该操作
	ErrForbidden = errors.New("app: forbidden")
	// ErrNothingSelected 结算时没有勾选任何条目
	ErrNothingSelected = errors.New("app: nothing selected")
	// ErrBusy 同一表单正在提交
	ErrBusy = errors.New("app: submission in progress")
)

// App 运行时上下文
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *api.Client
	blobs     storage.BlobStore
	ids       *idgen.Snowflake
	notifier  notify.Notifier
	confirmer notify.Confirmer
	currency  money.Currency
	cacheOpts []cache.Option

	cart     *cache.Store
	wishlist *cache.Store
}

// Option App 配置项
type Option func(*App)

// WithLogger 使用外部日志，不再按配置创建
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithNotifier 设置提示输出
func WithNotifier(n notify.Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithConfirmer 设置确认框
func WithConfirmer(c notify.Confirmer) Option {
	return func(a *App) { a.confirmer = c }
}

// WithBlobStore 使用外部存储，不再按配置打开
func WithBlobStore(b storage.BlobStore) Option {
	return func(a *App) { a.blobs = b }
}

// WithCacheOptions 额外的缓存选项（如测试时钟）
func WithCacheOptions(opts ...cache.Option) Option {
	return func(a *App) { a.cacheOpts = append(a.cacheOpts, opts...) }
}

// New 按配置创建 App，不发起网络请求
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	a := &App{cfg: cfg, currency: cfg.Currency()}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		l, err := logger.New(cfg.LoggerOptions())
		if err != nil {
			return nil, err
		}
		a.logger = l
	}

	ids, err := idgen.NewSnowflake(cfg.IDGen.WorkerID)
	if err != nil {
		return nil, err
	}
	a.ids = ids

	a.client, err = api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithCSRFToken(cfg.API.CSRFToken),
		api.WithLogger(a.logger.Named("api")))
	if err != nil {
		return nil, err
	}
	if a.blobs == nil {
		a.blobs, err = storage.Open(ctx, cfg.StorageOptions())
		if err != nil {
			return nil, err
		}
	}
	a.restoreSession(ctx)

	if a.notifier == nil || a.confirmer == nil {
		term := notify.NewTerminal(os.Stderr, os.Stdin)
		if a.notifier == nil {
			a.notifier = term
		}
		if a.confirmer == nil {
			a.confirmer = term
		}
	}
	return a, nil
}

// Bootstrap 打开购物车与收藏夹缓存并与服务端同步
//
// 打开失败直接返回；同步失败只记录日志并提示，本地数据仍然可用。
func (a *App) Bootstrap(ctx context.Context) error {
	opts := append([]cache.Option{
		cache.WithLogger(a.logger.Named("cache")),
		cache.WithCompression(a.cfg.Storage.Compress),
		cache.WithIDGenerator(a.ids),
	}, a.cacheOpts...)

	var cart, wishlist *cache.Store
	open, octx := errgroup.WithContext(ctx)
	open.Go(func() (err error) {
		cart, err = cache.Open(octx, cache.KindCart, a.blobs, a.client.CartRemote(), opts...)
		return err
	})
	open.Go(func() (err error) {
		wishlist, err = cache.Open(octx, cache.KindWishlist, a.blobs, a.client.WishlistRemote(), opts...)
		return err
	})
	if err := open.Wait(); err != nil {
		return err
	}
	a.cart, a.wishlist = cart, wishlist
	return a.Sync(ctx)
}

// Sync 并发刷新两份缓存；游客没有收藏夹，只刷新购物车
func (a *App) Sync(ctx context.Context) error {
	if a.cart == nil {
		return ErrNotBootstrapped
	}
	var g errgroup.Group
	g.Go(func() error { return a.refresh(ctx, a.cart, "cart") })
	if !a.client.Session().IsGuest() {
		g.Go(func() error { return a.refresh(ctx, a.wishlist, "wishlist") })
	}
	return g.Wait()
}

func (a *App) refresh(ctx context.Context, store *cache.Store, name string) error {
	if err := store.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("refresh failed, using local copy", zap.String("cache", name), zap.Error(err))
		a.notifier.ShowMessage("Could not sync your "+name+", showing saved items", notify.LevelWarning)
	}
	return nil
}

// Close 释放存储连接
func (a *App) Close() error {
	_ = a.logger.Sync()
	return a.blobs.Close()
}

// Config 当前配置
func (a *App) Config() *config.Config { return a.cfg }

// Logger 日志
func (a *App) Logger() *zap.Logger { return a.logger }

// Client API 客户端
func (a *App) Client() *api.Client { return a.client }

// Currency 展示币种
func (a *App) Currency() money.Currency { return a.currency }

// Cart 购物车缓存，Bootstrap 之前为 nil
func (a *App) Cart() *cache.Store { return a.cart }

// Wishlist 收藏夹缓存，Bootstrap 之前为 nil
func (a *App) Wishlist() *cache.Store { return a.wishlist }

// restoreSession 配置中的 token 优先，其次是上次登录保存的 token
func (a *App) restoreSession(ctx context.Context) {
	token := a.cfg.API.Token
	if token == "" {
		data, err := a.blobs.Get(ctx, SessionKey)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return
		case err != nil:
			a.logger.Warn("read saved session failed", zap.Error(err))
			return
		}
		token = string(data)
	}
	if err := a.client.SetToken(token); err != nil {
		a.logger.Warn("ignoring saved token", zap.Error(err))
	}
}

// Login 登录，保存 token 并重新同步缓存
func (a *App) Login(ctx context.Context, email, password string) (api.Session, error) {
	session, err := a.client.Login(ctx, email, password)
	if err != nil {
		a.report(err)
		return api.Session{}, err
	}
	if err := a.blobs.Set(ctx, SessionKey, []byte(a.client.Token())); err != nil {
		a.logger.Warn("save session failed", zap.Error(err))
	}
	a.notifier.ShowMessage("Welcome back, "+session.Email, notify.LevelSuccess)
	if a.cart != nil {
		if err := a.Sync(ctx); err != nil {
			return session, err
		}
	}
	return session, nil
}

// Logout 退出登录并清除保存的 token
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	if err := a.blobs.Delete(ctx, SessionKey); err != nil {
		return err
	}
	a.notifier.ShowMessage("You have been logged out", notify.LevelInfo)
	return nil
}

// report 把错误转换为用户提示；未登录时弹出登录框
func (a *App) report(err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		a.notifier.ShowModal(notify.ModalLogin)
	}
	a.notifier.ShowMessage(cache.UserMessage(err), notify.LevelError)
}
