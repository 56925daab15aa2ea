package validator

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind 规则类型（标签联合的判别字段）
type Kind uint8

const (
	KindRequired Kind = iota + 1
	KindLength
	KindNumeric
	KindPattern
	KindDate
	KindEnum
	KindFile
	KindCrossField
	KindFormat
)

var kindNames = map[Kind]string{
	KindRequired:   "required",
	KindLength:     "length-range",
	KindNumeric:    "numeric-range",
	KindPattern:    "pattern",
	KindDate:       "date-range",
	KindEnum:       "enum-membership",
	KindFile:       "file-constraint",
	KindCrossField: "cross-field",
	KindFormat:     "format",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// 失败检查项标签，同时作为自定义消息的键
const (
	TagRequired  = "required"
	TagMin       = "min"
	TagMax       = "max"
	TagNumber    = "number"
	TagInteger   = "integer"
	TagDecimals  = "decimals"
	TagPattern   = "pattern"
	TagDate      = "date"
	TagPast      = "not_before"
	TagFuture    = "not_after"
	TagAfter     = "after"
	TagSpan      = "span"
	TagOneOf     = "oneof"
	TagFileSize  = "file_size"
	TagFileType  = "file_type"
	TagFileCount = "file_count"
	TagCross     = "cross"
	TagFormat    = "format"
)

// CrossFunc 跨字段检查函数
// values 是调用时刻整个表单的值；返回 false 时 message 为空则使用默认消息
type CrossFunc func(value any, values Values) (ok bool, message string)

// FieldRule 单个字段的一条校验约束
//
// 所有规则共用一个结构体，由 Kind 决定解释哪一组参数（标签联合），
// 参数字段未导出，只能通过构造函数设置；构造后规则无状态，
// 相同输入多次调用 Validate 结果相同。
// InScenes/AsOptional/WithMessage 等修饰方法使用值接收者，返回修改后的副本。
type FieldRule struct {
	Field string
	Label string
	Kind  Kind

	// Optional 可选字段：空输入直接通过，不论其它约束
	Optional bool
	// Scenes 规则生效的场景，SceneNone 表示所有场景
	Scenes ValidateScene
	// Severity 失败时的提示级别，默认 error
	Severity Severity
	// Success 通过时的提示文本（可选）
	Success string

	length  lengthParams
	numeric numericParams
	pattern *regexp.Regexp
	date    dateParams
	enum    []string
	file    fileParams
	cross   CrossFunc
	format  formatParams

	messages map[string]string
	err      error
}

type lengthParams struct {
	min, max int
}

type numericParams struct {
	min, max     decimal.Decimal
	hasMin       bool
	hasMax       bool
	exclusiveMin bool
	maxDecimals  int // <0 表示不限制
	integer      bool
}

type dateParams struct {
	notBefore      *time.Time
	notBeforeToday bool
	notAfter       *time.Time
	notAfterNow    bool
	afterField     string
	afterLabel     string
	maxSpan        time.Duration
	clock          func() time.Time
}

type fileParams struct {
	maxBytes   int64
	mimeTypes  []string
	extensions []string
	minFiles   int
}

type formatParams struct {
	tag    string
	engine *Engine
}

func newRule(field, label string, kind Kind) FieldRule {
	if label == "" {
		label = field
	}
	r := FieldRule{Field: field, Label: label, Kind: kind, Severity: SeverityError}
	if strings.TrimSpace(field) == "" {
		r.err = ruleError(field, "field name cannot be empty")
	}
	return r
}

// Required 必填：nil / 去空格后为空 / 未选择文件 都视为缺失
func Required(field, label string) FieldRule {
	return newRule(field, label, KindRequired)
}

// Length 去空格后的字符数必须在 [min, max] 之间（按 rune 计数）
// min > 0 时空输入报告 "is required"
func Length(field, label string, min, max int) FieldRule {
	r := newRule(field, label, KindLength)
	r.length = lengthParams{min: min, max: max}
	if min < 0 || max < min {
		r.err = ruleError(field, "invalid length range [%d, %d]", min, max)
	}
	return r
}

// NumericOption 数值规则选项
type NumericOption func(*numericParams)

// ExclusiveMin 下界不包含（value > min）
func ExclusiveMin() NumericOption {
	return func(p *numericParams) { p.exclusiveMin = true }
}

// MaxDecimals 最多允许的小数位数
func MaxDecimals(n int) NumericOption {
	return func(p *numericParams) { p.maxDecimals = n }
}

// IntegerOnly 只允许整数
func IntegerOnly() NumericOption {
	return func(p *numericParams) { p.integer = true }
}

// NoMax 取消上界
func NoMax() NumericOption {
	return func(p *numericParams) { p.hasMax = false }
}

// Numeric 解析为十进制数后必须在 [min, max] 之间
func Numeric(field, label string, min, max float64, opts ...NumericOption) FieldRule {
	r := newRule(field, label, KindNumeric)
	r.numeric = numericParams{
		min:         decimal.NewFromFloat(min),
		max:         decimal.NewFromFloat(max),
		hasMin:      true,
		hasMax:      true,
		maxDecimals: -1,
	}
	for _, opt := range opts {
		opt(&r.numeric)
	}
	if r.numeric.hasMax && r.numeric.max.LessThan(r.numeric.min) {
		r.err = ruleError(field, "invalid numeric range [%v, %v]", min, max)
	}
	return r
}

// Pattern 去空格后的值必须匹配正则；message 为空时使用默认消息
func Pattern(field, label string, re *regexp.Regexp, message string) FieldRule {
	r := newRule(field, label, KindPattern)
	r.pattern = re
	if re == nil {
		r.err = ruleError(field, "pattern cannot be nil")
	}
	if message != "" {
		r = r.WithMessage(TagPattern, message)
	}
	return r
}

// DateOption 日期规则选项
type DateOption func(*dateParams)

// NotBefore 不得早于指定时间
func NotBefore(t time.Time) DateOption {
	return func(p *dateParams) { p.notBefore = &t }
}

// NotBeforeToday 不得早于今天零点（"不能是过去的日期"），今天由规则时钟在校验时计算
func NotBeforeToday() DateOption {
	return func(p *dateParams) { p.notBeforeToday = true }
}

// NotAfter 不得晚于指定时间
func NotAfter(t time.Time) DateOption {
	return func(p *dateParams) { p.notAfter = &t }
}

// NotAfterNow 不得晚于校验时刻（"不能是未来的日期"）
func NotAfterNow() DateOption {
	return func(p *dateParams) { p.notAfterNow = true }
}

// After 必须严格晚于另一个字段在校验时刻的值；另一字段为空或无法解析时跳过该检查
func After(field, label string) DateOption {
	return func(p *dateParams) {
		p.afterField = field
		p.afterLabel = label
	}
}

// MaxSpan 与 After 字段之间的跨度上限
func MaxSpan(d time.Duration) DateOption {
	return func(p *dateParams) { p.maxSpan = d }
}

// WithClock 替换规则使用的时钟（测试用）
func WithClock(clock func() time.Time) DateOption {
	return func(p *dateParams) { p.clock = clock }
}

// DateRange 日期规则，支持 2006-01-02、RFC3339 与 datetime-local 格式
func DateRange(field, label string, opts ...DateOption) FieldRule {
	r := newRule(field, label, KindDate)
	r.date.clock = time.Now
	for _, opt := range opts {
		opt(&r.date)
	}
	if r.date.maxSpan > 0 && r.date.afterField == "" {
		r.err = ruleError(field, "max span requires a related field")
	}
	if r.date.afterField == field {
		r.err = ruleError(field, "date cannot be relative to itself")
	}
	return r
}

// Enum 小写去空格后的值必须属于 allowed
func Enum(field, label string, allowed ...string) FieldRule {
	r := newRule(field, label, KindEnum)
	r.enum = make([]string, 0, len(allowed))
	for _, a := range allowed {
		r.enum = append(r.enum, strings.ToLower(strings.TrimSpace(a)))
	}
	if len(r.enum) == 0 {
		r.err = ruleError(field, "enum requires at least one allowed value")
	}
	return r
}

// File 文件大小与类型约束；extensions 可选，用于 MIME 不可信时的二次检查
func File(field, label string, maxBytes int64, mimeTypes []string, extensions ...string) FieldRule {
	r := newRule(field, label, KindFile)
	r.file = fileParams{maxBytes: maxBytes, minFiles: 1}
	for _, m := range mimeTypes {
		r.file.mimeTypes = append(r.file.mimeTypes, strings.ToLower(m))
	}
	for _, e := range extensions {
		r.file.extensions = append(r.file.extensions, strings.ToLower(strings.TrimPrefix(e, ".")))
	}
	if maxBytes <= 0 {
		r.err = ruleError(field, "max file size must be positive")
	}
	return r
}

// Cross 跨字段规则
func Cross(field, label string, fn CrossFunc) FieldRule {
	r := newRule(field, label, KindCrossField)
	r.cross = fn
	if fn == nil {
		r.err = ruleError(field, "cross-field function cannot be nil")
	}
	return r
}

// Format 使用 go-playground/validator 标签校验格式（email, url, e164 以及 Engine 上注册的自定义格式）
func Format(field, label, tag, message string) FieldRule {
	r := newRule(field, label, KindFormat)
	r.format = formatParams{tag: tag, engine: Default()}
	if tag == "" {
		r.err = ruleError(field, "format tag cannot be empty")
	}
	if message != "" {
		r = r.WithMessage(TagFormat, message)
	}
	return r
}

// AsOptional 标记为可选字段
func (r FieldRule) AsOptional() FieldRule {
	r.Optional = true
	return r
}

// InScenes 限定规则生效的场景
func (r FieldRule) InScenes(scenes ValidateScene) FieldRule {
	r.Scenes = scenes
	return r
}

// WithSeverity 设置失败时的提示级别
func (r FieldRule) WithSeverity(s Severity) FieldRule {
	r.Severity = s
	return r
}

// WithSuccess 设置通过时的提示文本
func (r FieldRule) WithSuccess(message string) FieldRule {
	r.Success = message
	return r
}

// WithMessage 覆盖某个检查项的默认消息
func (r FieldRule) WithMessage(tag, message string) FieldRule {
	messages := make(map[string]string, len(r.messages)+1)
	for k, v := range r.messages {
		messages[k] = v
	}
	messages[tag] = message
	r.messages = messages
	return r
}

// WithMinFiles 多文件上传时至少需要的文件数
func (r FieldRule) WithMinFiles(n int) FieldRule {
	r.file.minFiles = n
	return r
}

// WithEngine 为 format 规则指定校验引擎
func (r FieldRule) WithEngine(e *Engine) FieldRule {
	if e != nil {
		r.format.engine = e
	}
	return r
}

// Err 返回规则构造错误
func (r FieldRule) Err() error {
	if r.err == nil && (r.Kind < KindRequired || r.Kind > KindFormat) {
		return ruleError(r.Field, "unknown rule kind %d", r.Kind)
	}
	return r.err
}

// ActiveIn 规则是否在给定场景生效
func (r FieldRule) ActiveIn(scene ValidateScene) bool {
	return r.Scenes.Has(scene)
}
