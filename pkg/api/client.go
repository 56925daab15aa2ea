// Package api 店铺后端 REST 客户端
//
// 所有接口使用同一个响应信封：
//
//	{"success": false, "message": "Product is out of stock"}
//
// success 为 false 时返回 *RejectedError，message 原样展示给用户；
// 网络错误与无法解析的响应返回 ErrTransport；401 返回 ErrUnauthorized。
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HeaderCSRF CSRF token 请求头
	HeaderCSRF = "X-CSRF-TOKEN"
	// HeaderRequestID 请求 ID 请求头
	HeaderRequestID = "X-Request-ID"

	maxResponseBytes = 1 << 20
	defaultTimeout   = 10 * time.Second
)

// Client REST 客户端，可在多个 goroutine 中共享
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	csrfToken string
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	token   string
	session Session
}

// Option 客户端配置项
type Option func(*Client)

// WithHTTPClient 使用自定义 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout 请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithCSRFToken 每个请求携带的 CSRF token
func WithCSRFToken(token string) Option {
	return func(c *Client) {
		c.csrfToken = token
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock 设置时钟（判断 token 过期）
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New 创建客户端
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),
		now:     time.Now,
		session: GuestSession(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken 设置登录 token；空字符串表示退出登录
func (c *Client) SetToken(token string) error {
	session := GuestSession()
	if token != "" {
		s, err := ParseSession(token)
		if err != nil {
			return err
		}
		session = s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.session = session
	return nil
}

// Session 当前会话；token 过期后视为游客
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session.Expired(c.now()) {
		return GuestSession()
	}
	return c.session
}

// Token 当前 token；未登录时为空
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || c.session.Expired(c.now()) {
		return ""
	}
	return c.token
}

// envelope 通用响应信封
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// do 发送 JSON 请求并解析信封；out 为 nil 时丢弃响应体
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrfToken != "" {
		req.Header.Set(HeaderCSRF, c.csrfToken)
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("request failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Warn("read response failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	log.Debug("request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if len(bytes.TrimSpace(raw)) == 0 && resp.StatusCode < 400 {
		return nil
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return &unauthorizedError{message: env.Message}
	}
	if decodeErr != nil {
		// 非 JSON 响应（网关错误页等）
		return transportError("%s %s: %s: invalid response body", method, path, statusText(resp.StatusCode))
	}
	if (env.Success != nil && !*env.Success) || (env.Success == nil && resp.StatusCode >= 400) {
		if env.Success == nil && resp.StatusCode >= 500 {
			return transportError("%s %s: %s", method, path, statusText(resp.StatusCode))
		}
		rejected := &RejectedError{Status: resp.StatusCode, Message: env.Message}
		if len(env.Errors) > 0 {
			rejected.Fields = make(map[string]string, len(env.Errors))
			for _, fe := range env.Errors {
				rejected.Fields[fe.Field] = fe.Message
			}
		}
		log.Info("request rejected", zap.Int("status", resp.StatusCode), zap.String("message", env.Message))
		return rejected
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return transportError("%s %s: decode: %v", method, path, err)
	}
	return nil
}

// IsRejected 是否为服务端拒绝，返回服务端提示
func IsRejected(err error) (string, bool) {
	var rejected *RejectedError
	if errors.As(err, &rejected) {
		return rejected.Message, true
	}
	return "", false
}
