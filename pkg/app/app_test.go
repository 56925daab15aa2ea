package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"katydid-storefront/pkg/api"
	"katydid-storefront/pkg/cache"
	"katydid-storefront/pkg/config"
	"katydid-storefront/pkg/mockapi"
	"katydid-storefront/pkg/notify"
	"katydid-storefront/pkg/storage"
)

var (
	tote   = cache.Product{ID: 7, Name: "Canvas Tote", UnitPrice: 50000}
	shirt  = cache.Product{ID: 1, Name: "Classic T-Shirt", UnitPrice: 75000}
	jacket = cache.Product{ID: 2, Name: "Denim Jacket", UnitPrice: 350000}
)

type harness struct {
	app     *App
	backend *mockapi.Server
	rec     *notify.Recorder
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		API:     config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: storage.DriverMemory},
		Log:     config.LogConfig{Level: "error", MaxSizeMB: 1},
		IDGen:   config.IDGenConfig{WorkerID: 1},
		Locale:  config.LocaleConfig{Currency: "IDR"},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := mockapi.New(mockapi.WithProducts(mockapi.DefaultProducts()...))
	require.NoError(t, backend.AddUser("ana@example.com", "secret-pass", "user"))
	require.NoError(t, backend.AddUser("root@example.com", "secret-pass", "admin"))
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	rec := notify.NewRecorder(true)
	a, err := New(context.Background(), testConfig(srv.URL),
		WithLogger(zap.NewNop()),
		WithNotifier(rec),
		WithConfirmer(rec),
		WithBlobStore(storage.NewMemory()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	require.NoError(t, a.Bootstrap(context.Background()))
	return &harness{app: a, backend: backend, rec: rec}
}

func (h *harness) cart(t *testing.T) *CartController {
	t.Helper()
	c, err := h.app.CartController()
	require.NoError(t, err)
	return c
}

func (h *harness) wishlist(t *testing.T) *WishlistController {
	t.Helper()
	c, err := h.app.WishlistController()
	require.NoError(t, err)
	return c
}

func lastMessage(t *testing.T, rec *notify.Recorder) notify.Message {
	t.Helper()
	m, ok := rec.Last()
	require.True(t, ok)
	return m
}

func TestNew(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = New(context.Background(), testConfig("not a url"), WithLogger(zap.NewNop()))
	assert.Error(t, err)

	a, err := New(context.Background(), testConfig("http://localhost:1"), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	defer a.Close()

	_, err = a.CartController()
	assert.ErrorIs(t, err, ErrNotBootstrapped)
	_, err = a.WishlistController()
	assert.ErrorIs(t, err, ErrNotBootstrapped)
	assert.ErrorIs(t, a.Sync(context.Background()), ErrNotBootstrapped)
}

func TestBootstrap_RefreshFailureKeepsLocalCopy(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := notify.NewRecorder(true)
	a, err := New(context.Background(), testConfig(url),
		WithLogger(zap.NewNop()), WithNotifier(rec), WithConfirmer(rec))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Bootstrap(context.Background()))
	assert.NotNil(t, a.Cart())
	assert.NotNil(t, a.Wishlist())
	assert.Equal(t, notify.Message{
		Text:  "Could not sync your cart, showing saved items",
		Level: notify.LevelWarning,
	}, lastMessage(t, rec))
}

func TestCartController_AddAndSummary(t *testing.T) {
	h := newHarness(t)
	cart := h.cart(t)
	ctx := context.Background()

	_, err := cart.Add(ctx, tote, 2)
	require.NoError(t, err)
	e, err := cart.Add(ctx, tote, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, e.Quantity)
	assert.Equal(t, "3 items, total Rp 150.000", cart.Summary())
	assert.Equal(t, notify.Message{Text: "Product added to cart", Level: notify.LevelSuccess}, lastMessage(t, h.rec))
}

func TestCartController_RollbackShowsServerMessage(t *testing.T) {
	h := newHarness(t)
	cart := h.cart(t)
	ctx := context.Background()

	e, err := cart.Add(ctx, tote, 3)
	require.NoError(t, err)

	h.backend.FailNext(http.StatusConflict, "Product is out of stock")
	_, err = cart.Increment(ctx, e.ItemID)
	require.ErrorIs(t, err, cache.ErrRolledBack)
	assert.Equal(t, notify.Message{Text: "Product is out of stock", Level: notify.LevelError}, lastMessage(t, h.rec))

	got, ok := h.app.Cart().Get(e.ItemID)
	require.True(t, ok)
	assert.Equal(t, 3, got.Quantity)

	// 服务端没有给出原因时使用通用提示
	h.backend.FailNext(http.StatusInternalServerError, "")
	_, err = cart.Add(ctx, shirt, 1)
	require.Error(t, err)
	assert.Equal(t, cache.DefaultFailureMessage, lastMessage(t, h.rec).Text)
	assert.False(t, h.app.Cart().Contains(shirt.ID))
}

func TestCartController_Stepper(t *testing.T) {
	h := newHarness(t)
	cart := h.cart(t)
	ctx := context.Background()

	e, err := cart.Add(ctx, shirt, 1)
	require.NoError(t, err)

	e, err = cart.Increment(ctx, e.ItemID)
	require.NoError(t, err)
	assert.Equal(t, 2, e.Quantity)

	e, err = cart.Decrement(ctx, e.ItemID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Quantity)

	// 不会低于 1
	e, err = cart.Decrement(ctx, e.ItemID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.Quantity)

	e, err = cart.SetQuantity(ctx, e.ItemID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, e.Quantity)

	_, err = cart.Increment(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrItemNotFound)
}

func TestCartController_RemoveAsksFirst(t *testing.T) {
	h := newHarness(t)
	cart := h.cart(t)
	ctx := context.Background()

	e, err := cart.Add(ctx, tote, 1)
	require.NoError(t, err)

	h.rec.SetAnswer(false)
	removed, err := cart.Remove(ctx, e.ItemID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, h.app.Cart().Contains(tote.ID))
	assert.Equal(t, []string{"Remove Canvas Tote from your cart?"}, h.rec.Prompts())

	h.rec.SetAnswer(true)
	removed, err = cart.Remove(ctx, e.ItemID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, h.app.Cart().Contains(tote.ID))
}

func TestCartController_Checkout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("游客需要登录", func(t *testing.T) {
		_, err := h.cart(t).Checkout(ctx)
		assert.ErrorIs(t, err, ErrLoginRequired)
		assert.Contains(t, h.rec.Modals(), notify.ModalLogin)
	})

	_, err := h.app.Login(ctx, "ana@example.com", "secret-pass")
	require.NoError(t, err)
	cart := h.cart(t)

	t.Run("没有勾选", func(t *testing.T) {
		_, err := cart.Add(ctx, shirt, 1)
		require.NoError(t, err)
		cart.SelectAll(ctx, false)
		_, err = cart.Checkout(ctx)
		assert.ErrorIs(t, err, ErrNothingSelected)
	})

	t.Run("部分勾选", func(t *testing.T) {
		e, err := cart.Add(ctx, jacket, 1)
		require.NoError(t, err)
		require.NoError(t, cart.SetSelected(ctx, e.ItemID, true))
		ids, err := cart.Checkout(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{e.ItemID}, ids)
	})

	t.Run("管理员不能下单", func(t *testing.T) {
		_, err := h.app.Login(ctx, "root@example.com", "secret-pass")
		require.NoError(t, err)
		_, err = h.cart(t).Checkout(ctx)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestWishlistController(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	wishlist := h.wishlist(t)

	// 游客收藏时弹出登录框
	in, err := wishlist.Toggle(ctx, jacket)
	require.Error(t, err)
	assert.False(t, in)
	assert.Equal(t, []string{notify.ModalLogin}, h.rec.Modals())
	assert.Equal(t, "Please login first", lastMessage(t, h.rec).Text)

	_, err = h.app.Login(ctx, "ana@example.com", "secret-pass")
	require.NoError(t, err)

	in, err = wishlist.Toggle(ctx, jacket)
	require.NoError(t, err)
	assert.True(t, in)
	assert.Equal(t, "Added to wishlist", lastMessage(t, h.rec).Text)

	in, err = wishlist.Toggle(ctx, tote)
	require.NoError(t, err)
	assert.True(t, in)
	in, err = wishlist.Toggle(ctx, tote)
	require.NoError(t, err)
	assert.False(t, in)
	assert.Equal(t, "Removed from wishlist", lastMessage(t, h.rec).Text)

	entries := h.app.Wishlist().Entries()
	require.Len(t, entries, 1)

	added, err := wishlist.MoveToCart(ctx, entries[0].ItemID)
	require.NoError(t, err)
	assert.Equal(t, jacket.ID, added.ProductID)
	assert.Equal(t, 1, added.Quantity)
	assert.True(t, h.app.Cart().Contains(jacket.ID))
	assert.False(t, h.app.Wishlist().Contains(jacket.ID))
	assert.Equal(t, "Moved to cart", lastMessage(t, h.rec).Text)

	_, err = wishlist.Remove(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrItemNotFound)
}

func TestWishlistController_MoveToCartFailureKeepsWishlist(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.app.Login(ctx, "ana@example.com", "secret-pass")
	require.NoError(t, err)
	wishlist := h.wishlist(t)

	_, err = wishlist.Toggle(ctx, tote)
	require.NoError(t, err)
	e := h.app.Wishlist().Entries()[0]

	h.backend.FailNext(http.StatusConflict, "Product is out of stock")
	_, err = wishlist.MoveToCart(ctx, e.ItemID)
	require.Error(t, err)
	assert.True(t, h.app.Wishlist().Contains(tote.ID))
	assert.False(t, h.app.Cart().Contains(tote.ID))

	h.rec.SetAnswer(true)
	removed, err := wishlist.Remove(ctx, e.ItemID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, h.app.Wishlist().Entries())
}

func TestApp_SessionPersists(t *testing.T) {
	gin.SetMode(gin.TestMode)
	backend := mockapi.New(mockapi.WithProducts(mockapi.DefaultProducts()...))
	require.NoError(t, backend.AddUser("ana@example.com", "secret-pass", "user"))
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	ctx := context.Background()
	blobs := storage.NewMemory()
	open := func() *App {
		rec := notify.NewRecorder(true)
		a, err := New(ctx, testConfig(srv.URL),
			WithLogger(zap.NewNop()), WithNotifier(rec), WithConfirmer(rec), WithBlobStore(blobs))
		require.NoError(t, err)
		return a
	}

	first := open()
	assert.True(t, first.Client().Session().IsGuest())
	_, err := first.Login(ctx, "ana@example.com", "secret-pass")
	require.NoError(t, err)

	second := open()
	assert.Equal(t, "ana@example.com", second.Client().Session().Subject)

	require.NoError(t, second.Logout(ctx))
	assert.True(t, second.Client().Session().IsGuest())
	assert.True(t, open().Client().Session().IsGuest())

	_, err = first.Login(ctx, "ana@example.com", "wrong")
	require.ErrorIs(t, err, api.ErrUnauthorized)
}
