package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Severity 校验结果的严重程度，决定界面上的提示样式
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
)

// ValidationResult 单条规则（或单个字段）的校验结果
// 每次 Validate 调用都会创建新的结果，返回后不再修改
type ValidationResult struct {
	// Field 字段名
	Field string `json:"field"`
	// Tag 失败的检查项（如 required, max, pattern），通过时为空
	Tag string `json:"tag,omitempty"`
	// IsValid 是否通过
	IsValid bool `json:"is_valid"`
	// Message 给用户看的提示，通过时通常为空
	Message string `json:"message,omitempty"`
	// Severity 提示级别
	Severity Severity `json:"severity"`
}

// Valid 构造一个通过的结果
func Valid(field string) ValidationResult {
	return ValidationResult{Field: field, IsValid: true, Severity: SeveritySuccess}
}

// Invalid 构造一个失败的结果
func Invalid(field, tag, message string, severity Severity) ValidationResult {
	if severity == "" {
		severity = SeverityError
	}
	return ValidationResult{Field: field, Tag: tag, Message: message, Severity: severity}
}

// String 返回友好的错误信息
func (r ValidationResult) String() string {
	if r.IsValid {
		return fmt.Sprintf("field '%s': ok", r.Field)
	}
	if r.Message != "" {
		return fmt.Sprintf("field '%s': %s", r.Field, r.Message)
	}
	return fmt.Sprintf("field '%s' validation failed on tag '%s'", r.Field, r.Tag)
}

// FormValidationReport 整个表单的校验结果
// IsValid 为所有字段结果的逻辑与；Fields 保留注册顺序，便于按表单顺序展示
type FormValidationReport struct {
	Form         string                      `json:"form"`
	Scene        ValidateScene               `json:"scene"`
	IsValid      bool                        `json:"is_valid"`
	Fields       []string                    `json:"fields"`
	FieldResults map[string]ValidationResult `json:"field_results"`
}

func newReport(form string, scene ValidateScene, capacity int) *FormValidationReport {
	return &FormValidationReport{
		Form:         form,
		Scene:        scene,
		IsValid:      true,
		Fields:       make([]string, 0, capacity),
		FieldResults: make(map[string]ValidationResult, capacity),
	}
}

func (r *FormValidationReport) add(res ValidationResult) {
	if _, exists := r.FieldResults[res.Field]; !exists {
		r.Fields = append(r.Fields, res.Field)
	}
	r.FieldResults[res.Field] = res
	if !res.IsValid {
		r.IsValid = false
	}
}

// Result 获取指定字段的结果，未注册的字段视为通过
func (r *FormValidationReport) Result(field string) ValidationResult {
	if res, ok := r.FieldResults[field]; ok {
		return res
	}
	return Valid(field)
}

// Errors 按字段顺序返回所有失败结果
func (r *FormValidationReport) Errors() []ValidationResult {
	var out []ValidationResult
	for _, name := range r.Fields {
		if res := r.FieldResults[name]; !res.IsValid {
			out = append(out, res)
		}
	}
	return out
}

// FirstError 返回按字段顺序的第一个失败结果，用于表单顶部的提示条
func (r *FormValidationReport) FirstError() (ValidationResult, bool) {
	for _, name := range r.Fields {
		if res := r.FieldResults[name]; !res.IsValid {
			return res, true
		}
	}
	return ValidationResult{}, false
}

// Err 将失败结果合并为一个 error，全部通过时返回 nil
func (r *FormValidationReport) Err() error {
	if r.IsValid {
		return nil
	}
	errs := r.Errors()
	joined := make([]error, 0, len(errs))
	for _, res := range errs {
		joined = append(joined, &FieldError{Result: res})
	}
	return fmt.Errorf("%w: %w", ErrFormInvalid, errors.Join(joined...))
}

// Summary 用于日志与命令行输出
func (r *FormValidationReport) Summary() string {
	if r.IsValid {
		return fmt.Sprintf("%s: %d field(s) valid", r.Form, len(r.Fields))
	}
	var builder strings.Builder
	errs := r.Errors()
	builder.Grow(len(errs) * errorMessageEstimateLen)
	for i, res := range errs {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(res.String())
	}
	return builder.String()
}

// ToJSON 转换为 JSON 格式
func (r *FormValidationReport) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}
