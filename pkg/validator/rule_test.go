package validator

import (
	"regexp"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(s string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}

func TestLength_RangeProperty(t *testing.T) {
	inputs := []string{"", " ", "a", "  ab  ", "abc", "héllo", strings.Repeat("x", 99), strings.Repeat("x", 100), strings.Repeat("y", 101)}
	ranges := [][2]int{{0, 0}, {0, 5}, {1, 100}, {3, 5}, {100, 100}}

	for _, rg := range ranges {
		rule := Length("name", "Name", rg[0], rg[1])
		require.NoError(t, rule.Err())
		for _, in := range inputs {
			n := utf8.RuneCountInString(strings.TrimSpace(in))
			want := rg[0] <= n && n <= rg[1]
			got := rule.Validate(in, nil)
			assert.Equal(t, want, got.IsValid, "range=%v input=%q", rg, in)
		}
	}
}

func TestLength_Messages(t *testing.T) {
	rule := Length("categoryName", "Category name", 1, 100)

	tests := []struct {
		name    string
		input   string
		valid   bool
		message string
	}{
		{name: "空字符串", input: "", message: "Category name is required"},
		{name: "只有空格", input: "   ", message: "Category name is required"},
		{name: "超过上限", input: strings.Repeat("A", 150), message: "Category name must be less than 100 characters"},
		{name: "正常", input: "Summer", valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule.Validate(tt.input, nil)
			assert.Equal(t, tt.valid, res.IsValid)
			assert.Equal(t, tt.message, res.Message)
			if !tt.valid {
				assert.Equal(t, SeverityError, res.Severity)
			}
		})
	}
}

func TestNumeric(t *testing.T) {
	rule := Numeric("price", "Price", 1, 999, MaxDecimals(2))

	tests := []struct {
		name  string
		input any
		valid bool
		tag   string
	}{
		{name: "非数字", input: "abc", tag: TagNumber},
		{name: "部分数字", input: "12abc", tag: TagNumber},
		{name: "低于下限", input: "0.5", tag: TagMin},
		{name: "高于上限", input: "1000", tag: TagMax},
		{name: "边界下限", input: "1", valid: true},
		{name: "边界上限", input: 999, valid: true},
		{name: "两位小数", input: "12.50", valid: true},
		{name: "三位小数", input: "12.505", tag: TagDecimals},
		{name: "浮点输入", input: 42.25, valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule.Validate(tt.input, nil)
			assert.Equal(t, tt.valid, res.IsValid, res.Message)
			assert.Equal(t, tt.tag, res.Tag)
		})
	}
}

func TestNumeric_FractionalMaxMessage(t *testing.T) {
	rule := Numeric("rating", "Rating", 0, 99.5)
	assert.True(t, rule.Validate("99.5", nil).IsValid)

	res := rule.Validate("99.6", nil)
	assert.Equal(t, TagMax, res.Tag)
	assert.Equal(t, "Rating must not exceed 99.5", res.Message)
}

func TestNumeric_RangeProperty(t *testing.T) {
	rule := Numeric("n", "N", -10, 10)
	for _, in := range []string{"-11", "-10", "-0.5", "0", "9.999", "10", "10.0001", "NaN", "", "1e1"} {
		res := rule.Validate(in, nil)
		f, ok := toDecimal(in)
		want := ok && f.InexactFloat64() >= -10 && f.InexactFloat64() <= 10
		assert.Equal(t, want, res.IsValid, "input=%q", in)
	}
}

func TestNumeric_ExclusiveAndInteger(t *testing.T) {
	stock := Numeric("stock", "Stock", 0, 999999, IntegerOnly())
	assert.True(t, stock.Validate("0", nil).IsValid)
	assert.Equal(t, TagInteger, stock.Validate("1.5", nil).Tag)

	weight := Numeric("weight", "Weight", 0, 100, ExclusiveMin()).AsOptional()
	assert.True(t, weight.Validate("", nil).IsValid)
	res := weight.Validate("0", nil)
	assert.False(t, res.IsValid)
	assert.Equal(t, "Weight must be greater than 0", res.Message)
}

func TestPatternAndEnum(t *testing.T) {
	code := Pattern("code", "Promotion code", regexp.MustCompile(`^[A-Z0-9\-_]+$`), "Code may only contain A-Z, 0-9, - and _")
	assert.True(t, code.Validate(" SUMMER-25 ", nil).IsValid)
	res := code.Validate("summer 25", nil)
	assert.False(t, res.IsValid)
	assert.Equal(t, "Code may only contain A-Z, 0-9, - and _", res.Message)

	kind := Enum("type", "Promotion type", "percentage", "fixed-amount")
	assert.True(t, kind.Validate(" Percentage ", nil).IsValid)
	res = kind.Validate("bogus", nil)
	assert.False(t, res.IsValid)
	assert.Equal(t, "Promotion type must be one of: percentage, fixed-amount", res.Message)
}

func TestDateRange_EndAfterStart(t *testing.T) {
	end := DateRange("endDate", "End date", After("startDate", "Start date"), WithClock(fixedClock("2025-01-01")))

	tests := []struct {
		name    string
		start   string
		end     string
		valid   bool
		message string
	}{
		{name: "结束早于开始", start: "2025-01-10", end: "2025-01-05", message: "End date must be after start date"},
		{name: "结束等于开始", start: "2025-01-10", end: "2025-01-10", message: "End date must be after start date"},
		{name: "结束晚于开始", start: "2025-01-10", end: "2025-01-15", valid: true},
		{name: "开始日期为空时跳过", start: "", end: "2025-01-15", valid: true},
		{name: "非法日期", start: "2025-01-10", end: "15/01/2025", message: "End date must be a valid date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := end.Validate(tt.end, Values{"startDate": tt.start, "endDate": tt.end})
			assert.Equal(t, tt.valid, res.IsValid)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestDateRange_Property(t *testing.T) {
	end := DateRange("end", "End", After("start", "Start"))
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	for i := -3; i <= 3; i++ {
		e := base.AddDate(0, 0, i)
		res := end.Validate(e.Format("2006-01-02"), Values{"start": base.Format("2006-01-02")})
		assert.Equal(t, e.After(base), res.IsValid, "offset=%d", i)
	}
}

func TestDateRange_NotInPastAndSpan(t *testing.T) {
	clock := fixedClock("2025-06-15")
	start := DateRange("startDate", "Start date", NotBeforeToday(), WithClock(clock))
	assert.True(t, start.Validate("2025-06-15", nil).IsValid, "今天是允许的")
	res := start.Validate("2025-06-14", nil)
	assert.Equal(t, "Start date cannot be in the past", res.Message)

	report := DateRange("endDate", "End date", After("startDate", "Start date"), MaxSpan(365*24*time.Hour), WithClock(clock))
	assert.True(t, report.Validate("2025-12-31", Values{"startDate": "2025-01-01"}).IsValid)
	res = report.Validate("2026-06-01", Values{"startDate": "2025-01-01"})
	assert.Equal(t, TagSpan, res.Tag)
	assert.Equal(t, "Date range cannot exceed 365 days", res.Message)
}

func TestFile_WithMinFiles(t *testing.T) {
	gallery := File("gallery", "Gallery", 5<<20, []string{"image/png"}).WithMinFiles(2)
	one := []FileInfo{{Name: "a.png", Size: 1 << 10, ContentType: "image/png"}}
	two := append(one, FileInfo{Name: "b.png", Size: 2 << 10, ContentType: "image/png"})

	res := gallery.Validate(one, nil)
	assert.Equal(t, TagFileCount, res.Tag)
	assert.Equal(t, "Gallery requires at least 2 file(s)", res.Message)

	assert.Equal(t, TagRequired, gallery.Validate([]FileInfo{}, nil).Tag)
	assert.True(t, gallery.Validate(two, nil).IsValid)
}

func TestFile(t *testing.T) {
	rule := File("image", "Image", 2<<20, []string{"image/jpeg", "image/png", "image/gif"})

	tests := []struct {
		name     string
		value    any
		valid    bool
		tag      string
		contains string
	}{
		{name: "未选择文件", value: (*FileInfo)(nil), tag: TagRequired},
		{name: "3MB PNG 超出大小", value: &FileInfo{Name: "a.png", Size: 3 << 20, ContentType: "image/png"}, tag: TagFileSize, contains: "(3.00MB)"},
		{name: "1MB PDF 类型错误", value: FileInfo{Name: "a.pdf", Size: 1 << 20, ContentType: "application/pdf"}, tag: TagFileType, contains: "PDF"},
		{name: "500KB JPEG 通过", value: &FileInfo{Name: "a.jpg", Size: 500 << 10, ContentType: "image/jpeg"}, valid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rule.Validate(tt.value, nil)
			assert.Equal(t, tt.valid, res.IsValid)
			assert.Equal(t, tt.tag, res.Tag)
			assert.Contains(t, res.Message, tt.contains)
		})
	}
}

func TestOptional_EmptyAlwaysValid(t *testing.T) {
	rules := []FieldRule{
		Numeric("n", "N", 5, 10).AsOptional(),
		Pattern("p", "P", regexp.MustCompile(`^x$`), "").AsOptional(),
		Enum("e", "E", "a").AsOptional(),
		DateRange("d", "D", NotBeforeToday()).AsOptional(),
		File("f", "F", 10, []string{"image/png"}).AsOptional(),
		Length("l", "L", 3, 5).AsOptional(),
	}
	for _, r := range rules {
		for _, empty := range []any{nil, "", "   "} {
			assert.True(t, r.Validate(empty, nil).IsValid, "kind=%s value=%q", r.Kind, empty)
		}
	}

	required := []FieldRule{Required("r", "R"), Numeric("n", "N", 0, 1), Enum("e", "E", "a"), File("f", "F", 10, nil)}
	for _, r := range required {
		res := r.Validate("", nil)
		assert.False(t, res.IsValid, "kind=%s", r.Kind)
		assert.Equal(t, TagRequired, res.Tag)
	}
}

func TestRule_Pure(t *testing.T) {
	rule := Length("name", "Name", 3, 5)
	first := rule.Validate("ab", nil)
	second := rule.Validate("ab", nil)
	assert.Equal(t, first, second)
}

func TestRule_ConstructionErrors(t *testing.T) {
	tests := []struct {
		name string
		rule FieldRule
	}{
		{name: "长度范围倒置", rule: Length("a", "A", 5, 1)},
		{name: "空字段名", rule: Required("", "A")},
		{name: "空枚举", rule: Enum("a", "A")},
		{name: "nil 正则", rule: Pattern("a", "A", nil, "")},
		{name: "跨度缺少关联字段", rule: DateRange("a", "A", MaxSpan(time.Hour))},
		{name: "未知类型", rule: FieldRule{Field: "a", Kind: Kind(99)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.rule.Err(), ErrInvalidRule)
		})
	}
}

func TestFormat_Engine(t *testing.T) {
	email := Format("email", "Email", "email", "Invalid email format")
	assert.True(t, email.Validate("user@example.com", nil).IsValid)
	res := email.Validate("not-an-email", nil)
	assert.Equal(t, "Invalid email format", res.Message)

	phone := Format("phone", "Phone", "id_phone", "").AsOptional()
	assert.True(t, phone.Validate("0812-3456-7890", nil).IsValid)
	assert.True(t, phone.Validate("+6281234567890", nil).IsValid)
	assert.False(t, phone.Validate("12345", nil).IsValid)
}

func TestFormat_WithEngine(t *testing.T) {
	engine := NewEngine()
	require.NoError(t, engine.RegisterFormat("sku_code", func(s string) bool {
		return strings.HasPrefix(s, "SKU-") && len(s) > 4
	}))
	assert.ErrorIs(t, engine.RegisterFormat("", nil), ErrInvalidRule)

	sku := Format("sku", "SKU", "sku_code", "").WithEngine(engine)
	assert.True(t, sku.Validate("SKU-001", nil).IsValid)
	res := sku.Validate("001", nil)
	assert.Equal(t, TagFormat, res.Tag)
	assert.Equal(t, "SKU is not a valid sku_code", res.Message)

	// nil 保留原引擎
	email := Format("email", "Email", "email", "").WithEngine(nil)
	assert.True(t, email.Validate("user@example.com", nil).IsValid)
}

func TestEngine_ValidateStruct(t *testing.T) {
	type cfg struct {
		BaseURL string `mapstructure:"base_url" validate:"required,url"`
		Driver  string `json:"driver" validate:"oneof=memory redis"`
	}
	assert.Nil(t, Default().ValidateStruct(&cfg{BaseURL: "http://localhost:8080", Driver: "memory"}))

	results := Default().ValidateStruct(&cfg{Driver: "disk"})
	require.Len(t, results, 2)
	assert.Equal(t, "base_url", results[0].Field)
	assert.Equal(t, "driver", results[1].Field)
	assert.Equal(t, "oneof", results[1].Tag)
}
