package validator

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Validate 执行规则
//
// 执行顺序：
//  1. 可选字段空输入直接通过
//  2. 按 Kind 分派到对应检查函数
//
// 校验从不返回 error，失败通过 ValidationResult 表达。
func (r FieldRule) Validate(value any, values Values) ValidationResult {
	if r.Optional && isEmpty(value) {
		return r.pass()
	}

	switch r.Kind {
	case KindRequired:
		if isEmpty(value) {
			return r.fail(TagRequired, "%s is required", r.Label)
		}
		return r.pass()
	case KindLength:
		return r.checkLength(value)
	case KindCrossField:
		return r.checkCross(value, values)
	}

	// 其余类型在非可选时要求有值
	if isEmpty(value) {
		return r.fail(TagRequired, "%s is required", r.Label)
	}

	switch r.Kind {
	case KindNumeric:
		return r.checkNumeric(value)
	case KindPattern:
		return r.checkPattern(value)
	case KindDate:
		return r.checkDate(value, values)
	case KindEnum:
		return r.checkEnum(value)
	case KindFile:
		return r.checkFile(value)
	case KindFormat:
		return r.checkFormat(value)
	}

	// 构造阶段已拒绝未知类型，这里按"无约束"处理
	return r.pass()
}

func (r FieldRule) pass() ValidationResult {
	res := Valid(r.Field)
	res.Message = r.Success
	return res
}

func (r FieldRule) fail(tag, format string, args ...any) ValidationResult {
	message, ok := r.messages[tag]
	if !ok {
		message = fmt.Sprintf(format, args...)
	}
	return Invalid(r.Field, tag, message, r.Severity)
}

func (r FieldRule) checkLength(value any) ValidationResult {
	n := utf8.RuneCountInString(strings.TrimSpace(toString(value)))
	if n == 0 && r.length.min > 0 {
		return r.fail(TagRequired, "%s is required", r.Label)
	}
	if n < r.length.min {
		return r.fail(TagMin, "%s must be at least %d characters", r.Label, r.length.min)
	}
	if n > r.length.max {
		return r.fail(TagMax, "%s must be less than %d characters", r.Label, r.length.max)
	}
	return r.pass()
}

func (r FieldRule) checkNumeric(value any) ValidationResult {
	p := r.numeric
	d, ok := toDecimal(value)
	if !ok {
		return r.fail(TagNumber, "%s must be a valid number", r.Label)
	}
	if p.integer && !d.IsInteger() {
		return r.fail(TagInteger, "%s must be a whole number", r.Label)
	}
	if p.hasMin {
		if p.exclusiveMin && d.LessThanOrEqual(p.min) {
			return r.fail(TagMin, "%s must be greater than %s", r.Label, p.min.String())
		}
		if d.LessThan(p.min) {
			return r.fail(TagMin, "%s must be at least %s", r.Label, p.min.String())
		}
	}
	if p.hasMax && d.GreaterThan(p.max) {
		return r.fail(TagMax, "%s must not exceed %s", r.Label, p.max.String())
	}
	if p.maxDecimals >= 0 && decimalPlaces(d) > p.maxDecimals {
		return r.fail(TagDecimals, "%s can have maximum %d decimal places", r.Label, p.maxDecimals)
	}
	return r.pass()
}

func (r FieldRule) checkPattern(value any) ValidationResult {
	if !r.pattern.MatchString(strings.TrimSpace(toString(value))) {
		return r.fail(TagPattern, "%s has an invalid format", r.Label)
	}
	return r.pass()
}

func (r FieldRule) checkDate(value any, values Values) ValidationResult {
	p := r.date
	now := p.clock()
	loc := now.Location()

	t, ok := toTime(value, loc)
	if !ok {
		return r.fail(TagDate, "%s must be a valid date", r.Label)
	}

	if p.notBeforeToday {
		y, m, d := now.Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, loc)
		if t.Before(today) {
			return r.fail(TagPast, "%s cannot be in the past", r.Label)
		}
	}
	if p.notBefore != nil && t.Before(*p.notBefore) {
		return r.fail(TagPast, "%s must not be before %s", r.Label, p.notBefore.Format("2006-01-02"))
	}
	if p.notAfterNow && t.After(now) {
		return r.fail(TagFuture, "%s cannot be in the future", r.Label)
	}
	if p.notAfter != nil && t.After(*p.notAfter) {
		return r.fail(TagFuture, "%s must not be after %s", r.Label, p.notAfter.Format("2006-01-02"))
	}

	// 关联字段在校验时刻读取，用户先填结束日期再修改开始日期时依然正确
	if p.afterField != "" {
		if other, ok := toTime(values[p.afterField], loc); ok {
			if !t.After(other) {
				return r.fail(TagAfter, "%s must be after %s", r.Label, strings.ToLower(p.afterLabel))
			}
			if p.maxSpan > 0 && t.Sub(other) > p.maxSpan {
				days := int(math.Ceil(p.maxSpan.Hours() / 24))
				return r.fail(TagSpan, "Date range cannot exceed %d days", days)
			}
		}
	}
	return r.pass()
}

func (r FieldRule) checkEnum(value any) ValidationResult {
	v := strings.ToLower(strings.TrimSpace(toString(value)))
	if !slices.Contains(r.enum, v) {
		return r.fail(TagOneOf, "%s must be one of: %s", r.Label, strings.Join(r.enum, ", "))
	}
	return r.pass()
}

func (r FieldRule) checkFile(value any) ValidationResult {
	p := r.file
	files := toFiles(value)
	if len(files) < p.minFiles {
		if len(files) == 0 {
			return r.fail(TagRequired, "%s is required", r.Label)
		}
		return r.fail(TagFileCount, "%s requires at least %d file(s)", r.Label, p.minFiles)
	}

	for _, f := range files {
		if f.Size > p.maxBytes {
			return r.fail(TagFileSize, "%s exceeds %s limit (%sMB)", r.Label, formatBytes(p.maxBytes), f.SizeMB())
		}
		contentType := strings.ToLower(f.ContentType)
		if len(p.mimeTypes) > 0 && !slices.Contains(p.mimeTypes, contentType) {
			return r.fail(TagFileType, "%s must be one of %s (got %s)", r.Label, describeTypes(p.mimeTypes), displayType(contentType))
		}
		if len(p.extensions) > 0 && !slices.Contains(p.extensions, f.Extension()) {
			return r.fail(TagFileType, "%s must have extension %s (got .%s)", r.Label, strings.Join(p.extensions, "/"), f.Extension())
		}
	}
	return r.pass()
}

func (r FieldRule) checkCross(value any, values Values) ValidationResult {
	ok, message := r.cross(value, values)
	if ok {
		return r.pass()
	}
	if message == "" {
		return r.fail(TagCross, "%s is invalid", r.Label)
	}
	if custom, exists := r.messages[TagCross]; exists {
		message = custom
	}
	return Invalid(r.Field, TagCross, message, r.Severity)
}

func (r FieldRule) checkFormat(value any) ValidationResult {
	if !r.format.engine.Check(strings.TrimSpace(toString(value)), r.format.tag) {
		return r.fail(TagFormat, "%s is not a valid %s", r.Label, r.format.tag)
	}
	return r.pass()
}

// formatBytes 2097152 -> "2MB"
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%dB", n)
}

// describeTypes image/jpeg,image/png -> "JPEG, PNG"
func describeTypes(types []string) string {
	seen := make([]string, 0, len(types))
	for _, t := range types {
		d := displayType(t)
		if d == "JPG" {
			d = "JPEG"
		}
		if !slices.Contains(seen, d) {
			seen = append(seen, d)
		}
	}
	return strings.Join(seen, ", ")
}

func displayType(contentType string) string {
	if contentType == "" {
		return "unknown"
	}
	if idx := strings.IndexByte(contentType, '/'); idx >= 0 && idx < len(contentType)-1 {
		return strings.ToUpper(contentType[idx+1:])
	}
	return contentType
}
