// Package forms 店铺后台与前台各表单的字段规则集
//
// 每个表单对应一个构造函数，返回绑定好规则的 *validator.Orchestrator。
// 规则的边界与提示文案与服务端保持一致，服务端（mockapi）提交时复用同一套规则。
package forms

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"katydid-storefront/pkg/validator"
)

// 表单名称
const (
	Category  = "category"
	Product   = "product"
	Promotion = "promotion"
	Customer  = "customer"
	Order     = "order"
	Report    = "report"
)

// ErrUnknownForm 未注册的表单名
var ErrUnknownForm = errors.New("unknown form")

type config struct {
	scene  validator.ValidateScene
	clock  func() time.Time
	logger *zap.Logger
}

// Option 规则集选项
type Option func(*config)

// WithScene 新建/编辑场景
func WithScene(scene validator.ValidateScene) Option {
	return func(c *config) { c.scene = scene }
}

// WithClock 日期规则使用的时钟
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger 编排器日志
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// Builder 根据选项构造表单规则
type Builder func(opts ...Option) *validator.Orchestrator

var registry = map[string]Builder{
	Category:  NewCategory,
	Product:   NewProduct,
	Promotion: NewPromotion,
	Customer:  NewCustomer,
	Order:     NewOrder,
	Report:    NewReport,
}

// Lookup 按表单名获取规则集
func Lookup(name string, opts ...Option) (*validator.Orchestrator, error) {
	build, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, name)
	}
	return build(opts...), nil
}

// Names 所有已注册的表单名（排序后）
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newConfig(opts []Option) config {
	c := config{scene: validator.SceneCreate, clock: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) form(name string, rules ...validator.FieldRule) *validator.Orchestrator {
	return validator.NewOrchestrator(name,
		validator.WithScene(c.scene),
		validator.WithLogger(c.logger),
		validator.WithRules(rules...),
	)
}

// bounded 同一检查项的下界和上界使用同一条提示
func bounded(rule validator.FieldRule, message string) validator.FieldRule {
	return rule.WithMessage(validator.TagMin, message).WithMessage(validator.TagMax, message)
}

var imageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif"}
