package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Engine 封装 go-playground/validator
//
// 两个用途：
//   - format 规则：用内置标签（email, url, e164 ...）或自定义标签校验单个值
//   - 结构体标签校验：配置等结构体直接使用 `validate:"..."` 标签
//
// 底层 Validate 实例是并发安全的，Engine 可在多个 goroutine 中共享。
type Engine struct {
	validate *validator.Validate
}

var (
	// defaultEngine 默认引擎，全局单例
	defaultEngine *Engine
	// once 确保默认引擎只初始化一次
	once sync.Once
)

// idPhonePattern 印尼手机号：08 或 +62 开头，9~12 位数字
var idPhonePattern = regexp.MustCompile(`^(\+62|0)[0-9]{9,12}$`)

// Default 获取默认引擎实例（单例）
func Default() *Engine {
	once.Do(func() {
		defaultEngine = NewEngine()
	})
	return defaultEngine
}

// NewEngine 创建独立的引擎实例，已注册店铺使用的自定义格式
func NewEngine() *Engine {
	v := validator.New()

	// 使用 json / mapstructure tag 作为字段名，错误信息与配置键保持一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	e := &Engine{validate: v}

	// 号码中的空格、横线等分隔符先去掉再匹配
	_ = e.RegisterFormat("id_phone", func(s string) bool {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '+' {
				return r
			}
			return -1
		}, s)
		return idPhonePattern.MatchString(cleaned)
	})
	return e
}

// RegisterFormat 注册自定义字符串格式
func (e *Engine) RegisterFormat(tag string, fn func(string) bool) error {
	if tag == "" || fn == nil {
		return ErrInvalidRule
	}
	return e.validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

// Check 使用标签校验单个值
func (e *Engine) Check(value any, tag string) bool {
	return e.validate.Var(value, tag) == nil
}

// ValidateStruct 按 struct tag 校验，并把底层错误转换为 ValidationResult 列表
// 返回 nil 表示全部通过
func (e *Engine) ValidateStruct(obj any) []ValidationResult {
	if obj == nil {
		return []ValidationResult{Invalid("struct", TagRequired, "validation target cannot be nil", SeverityError)}
	}

	err := e.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		// InvalidValidationError 等非字段错误
		return []ValidationResult{Invalid("struct", "", err.Error(), SeverityError)}
	}

	results := make([]ValidationResult, 0, len(validationErrors))
	for _, fe := range validationErrors {
		results = append(results, Invalid(namespaceWithoutRoot(fe.Namespace()), fe.Tag(), fe.Error(), SeverityError))
	}
	return results
}

// namespaceWithoutRoot Config.api.base_url -> api.base_url
func namespaceWithoutRoot(ns string) string {
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	return ns
}
