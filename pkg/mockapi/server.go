// Package mockapi 内存实现的店铺后端，用于本地开发与集成测试
package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"katydid-storefront/pkg/money"
	"katydid-storefront/pkg/types"
)

const (
	guestBucket = "guest"
	tokenTTL    = 24 * time.Hour
)

var (
	// ErrUserExists 用户已存在
	ErrUserExists = errors.New("mockapi: user already exists")
)

// Product 商品目录中的商品
type Product struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Price money.Amount `json:"price"`
	Stock int          `json:"stock"`
}

type user struct {
	email string
	hash  []byte
	role  string
}

type item struct {
	ID         string           `json:"id"`
	ProductID  int64            `json:"product_id"`
	Name       string           `json:"name"`
	Price      money.Amount     `json:"price"`
	Quantity   int              `json:"quantity,omitempty"`
	Attributes types.Attributes `json:"attributes,omitempty"`
}

type failure struct {
	status  int
	message string
}

// Server 内存后端
type Server struct {
	engine *gin.Engine
	secret []byte
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	products  map[int64]Product
	users     map[string]user
	carts     map[string][]*item
	wishlists map[string][]*item
	seq       int64
	failures  []failure
}

// Option 配置项
type Option func(*Server)

// WithSecret token 签名密钥
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock 设置时钟（token 签发与表单日期校验）
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithProducts 商品目录
func WithProducts(products ...Product) Option {
	return func(s *Server) {
		for _, p := range products {
			s.products[p.ID] = p
		}
	}
}

// DefaultProducts 示例商品
func DefaultProducts() []Product {
	return []Product{
		{ID: 1, Name: "Classic T-Shirt", Price: 75000, Stock: 50},
		{ID: 2, Name: "Denim Jacket", Price: 350000, Stock: 10},
		{ID: 7, Name: "Canvas Tote", Price: 50000, Stock: 5},
	}
}

// New 创建后端
func New(opts ...Option) *Server {
	s := &Server{
		secret:    []byte("storefront-dev-secret"),
		logger:    zap.NewNop(),
		now:       time.Now,
		products:  make(map[int64]Product),
		users:     make(map[string]user),
		carts:     make(map[string][]*item),
		wishlists: make(map[string][]*item),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

// Handler http.Handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// AddUser 注册用户，密码以 bcrypt 保存
func (s *Server) AddUser(email, password, role string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := s.users[key]; ok {
		return fmt.Errorf("%w: %s", ErrUserExists, email)
	}
	s.users[key] = user{email: email, hash: hash, role: role}
	return nil
}

// FailNext 下一个修改类请求（非 GET）返回 success:false
func (s *Server) FailNext(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{status: status, message: message})
}

// IssueToken 签发 token
func (s *Server) IssueToken(email, role string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   email,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), s.authenticate(), s.injectFailure())

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	api.POST("/auth/login", s.login)
	api.POST("/forms/:name", s.submitForm)

	s.cartRoutes(api.Group("/guest/cart"))
	s.cartRoutes(api.Group("/cart", s.requireUser))

	wishlist := api.Group("/wishlist", s.requireUser)
	wishlist.GET("", s.listWishlist)
	wishlist.POST("", s.addWishlist)
	wishlist.DELETE("", s.clearWishlist)
	wishlist.GET("/count", s.countWishlist)
	wishlist.GET("/check/:productId", s.checkWishlist)
	wishlist.DELETE("/:productId", s.removeWishlist)
	return r
}

func (s *Server) cartRoutes(g *gin.RouterGroup) {
	g.GET("", s.listCart)
	g.POST("", s.addCart)
	g.DELETE("", s.clearCart)
	g.GET("/count", s.countCart)
	g.PATCH("/:productId", s.updateCart)
	g.DELETE("/:productId", s.removeCart)
}

// accessLog 记录请求，回写 X-Request-ID
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID != "" {
			c.Header("X-Request-ID", requestID)
		}
		c.Next()
		s.logger.Debug("mockapi request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("request_id", requestID),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// authenticate 解析 Bearer token；token 非法时返回 401
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			unauthorized(c, "Invalid authorization header")
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
		if err != nil {
			unauthorized(c, "Session expired, please login again")
			return
		}
		sub, _ := claims.GetSubject()
		role, _ := claims["role"].(string)
		c.Set("subject", sub)
		c.Set("role", role)
		c.Next()
	}
}

func (s *Server) requireUser(c *gin.Context) {
	if c.GetString("subject") == "" {
		unauthorized(c, "Please login first")
		return
	}
	c.Next()
}

// injectFailure 消耗一个 FailNext
func (s *Server) injectFailure() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		s.mu.Lock()
		var f *failure
		if len(s.failures) > 0 {
			f = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if f != nil {
			reject(c, f.status, f.message)
			return
		}
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		reject(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(req.Password)) != nil {
		unauthorized(c, "Invalid email or password")
		return
	}

	token, err := s.IssueToken(u.email, u.role)
	if err != nil {
		reject(c, http.StatusInternalServerError, "Could not issue token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "role": u.role})
}

// bucket 登录用户按邮箱隔离，游客共用一个
func bucket(c *gin.Context) string {
	if sub := c.GetString("subject"); sub != "" {
		return sub
	}
	return guestBucket
}

func reject(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func unauthorized(c *gin.Context, message string) {
	reject(c, http.StatusUnauthorized, message)
}
