package validator

import (
	"sync"

	"go.uber.org/zap"
)

// Orchestrator 单个表单的校验编排器
// 职责：持有表单的全部字段规则，按字段或整表执行，并汇总结果
// 校验本身是纯函数；显示/隐藏错误提示由调用方根据返回结果完成
type Orchestrator struct {
	name   string
	scene  ValidateScene
	logger *zap.Logger

	mu    sync.RWMutex
	order []string
	rules map[string][]FieldRule
}

// Option 编排器选项
type Option func(*Orchestrator)

// WithScene 设置当前场景（默认 SceneAll）
func WithScene(scene ValidateScene) Option {
	return func(o *Orchestrator) {
		o.scene = scene
	}
}

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRules 在创建时注册规则，构造错误会导致 panic（静态规则集属于编程错误）
func WithRules(rules ...FieldRule) Option {
	return func(o *Orchestrator) {
		o.MustRegister(rules...)
	}
}

// NewOrchestrator 创建表单编排器
func NewOrchestrator(name string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		name:   name,
		scene:  SceneAll,
		logger: zap.NewNop(),
		rules:  make(map[string][]FieldRule),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Name 表单名
func (o *Orchestrator) Name() string {
	return o.name
}

// Scene 当前场景
func (o *Orchestrator) Scene() ValidateScene {
	return o.scene
}

// Register 注册规则；同一字段可注册多条，按注册顺序串联执行
// 任一规则构造非法时整批不注册并返回错误
func (o *Orchestrator) Register(rules ...FieldRule) error {
	for _, r := range rules {
		if err := r.Err(); err != nil {
			return err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, r := range rules {
		if _, exists := o.rules[r.Field]; !exists {
			o.order = append(o.order, r.Field)
		}
		o.rules[r.Field] = append(o.rules[r.Field], r)
	}
	return nil
}

// MustRegister 同 Register，出错时 panic
func (o *Orchestrator) MustRegister(rules ...FieldRule) *Orchestrator {
	if err := o.Register(rules...); err != nil {
		panic(err)
	}
	return o
}

// InScene 返回共享同一规则集、场景不同的编排器副本
func (o *Orchestrator) InScene(scene ValidateScene) *Orchestrator {
	o.mu.RLock()
	defer o.mu.RUnlock()

	clone := &Orchestrator{
		name:   o.name,
		scene:  scene,
		logger: o.logger,
		order:  append([]string(nil), o.order...),
		rules:  make(map[string][]FieldRule, len(o.rules)),
	}
	for field, rules := range o.rules {
		clone.rules[field] = append([]FieldRule(nil), rules...)
	}
	return clone
}

// Fields 已注册字段（注册顺序）
func (o *Orchestrator) Fields() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]string(nil), o.order...)
}

// Rules 某字段的规则副本
func (o *Orchestrator) Rules(field string) []FieldRule {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]FieldRule(nil), o.rules[field]...)
}

// ValidateField 校验单个字段（输入/失焦时调用）
// 跨字段规则只能看到该字段自身的值；需要完整上下文时使用 ValidateFieldIn
func (o *Orchestrator) ValidateField(name string, value any) ValidationResult {
	return o.validateField(name, value, Values{name: value})
}

// ValidateFieldIn 使用整表的当前值校验单个字段
func (o *Orchestrator) ValidateFieldIn(name string, values Values) ValidationResult {
	return o.validateField(name, values[name], values)
}

// validateField 没有规则的字段视为无约束，直接通过
// 同一字段的多条规则中，第一条失败的规则短路返回
func (o *Orchestrator) validateField(name string, value any, values Values) ValidationResult {
	o.mu.RLock()
	rules := o.rules[name]
	o.mu.RUnlock()

	last := Valid(name)
	for _, r := range rules {
		if !r.ActiveIn(o.scene) {
			continue
		}
		res := r.Validate(value, values)
		if !res.IsValid {
			return res
		}
		last = res
	}
	return last
}

// ValidateForm 校验全部已注册字段
// 跨字段规则读取的是本次调用传入的值，而不是规则注册时的值
func (o *Orchestrator) ValidateForm(values Values) *FormValidationReport {
	fields := o.Fields()
	report := newReport(o.name, o.scene, len(fields))

	for _, name := range fields {
		report.add(o.validateField(name, values[name], values))
	}

	if !report.IsValid {
		failed := make([]string, 0, len(report.Fields))
		for _, res := range report.Errors() {
			failed = append(failed, res.Field)
		}
		o.logger.Debug("form validation failed",
			zap.String("form", o.name),
			zap.Stringer("scene", o.scene),
			zap.Strings("fields", failed))
	}
	return report
}
