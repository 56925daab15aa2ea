package validator

import (
	"errors"
	"fmt"
)

// errorMessageEstimateLen 单条错误信息的预估长度，用于 Builder 预分配
const errorMessageEstimateLen = 64

var (
	// ErrFormInvalid 表单校验未通过（由 FormValidationReport.Err 返回）
	ErrFormInvalid = errors.New("form validation failed")

	// ErrInvalidRule 规则构造参数非法，属于编程错误，在注册阶段暴露
	ErrInvalidRule = errors.New("invalid field rule")

	// ErrInvalidValues 表单值无法解码
	ErrInvalidValues = errors.New("invalid form values")

	// ErrUnknownField 表单值包含未注册的字段
	ErrUnknownField = errors.New("unknown form field")
)

// FieldError 将单个失败结果包装为 error
type FieldError struct {
	Result ValidationResult
}

// Error 实现 error 接口
func (e *FieldError) Error() string {
	return e.Result.String()
}

// ruleError 构造带字段信息的规则错误
func ruleError(field, format string, args ...any) error {
	return fmt.Errorf("%w: field '%s': %s", ErrInvalidRule, field, fmt.Sprintf(format, args...))
}
