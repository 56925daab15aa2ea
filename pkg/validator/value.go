package validator

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Values 表单在某一时刻的全部字段值（字段名 -> 值）
type Values map[string]any

// String 以字符串形式读取字段，缺失时返回空串
func (v Values) String(field string) string {
	if v == nil {
		return ""
	}
	return toString(v[field])
}

// FileInfo 上传文件的元信息
type FileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Extension 小写扩展名（不含点）
func (f FileInfo) Extension() string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(f.Name), "."))
}

// SizeMB 以 MB 为单位的大小，保留两位小数
func (f FileInfo) SizeMB() string {
	return fmt.Sprintf("%.2f", float64(f.Size)/float64(1<<20))
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case *string:
		return v == nil || strings.TrimSpace(*v) == ""
	case []byte:
		return len(strings.TrimSpace(string(v))) == 0
	case *FileInfo:
		return v == nil
	case FileInfo:
		return v == FileInfo{}
	case []FileInfo:
		return len(v) == 0
	case []*FileInfo:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case *time.Time:
		return v == nil || v.IsZero()
	case time.Time:
		return v.IsZero()
	}
	return false
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case []byte:
		return string(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case decimal.Decimal:
		return v.String()
	case time.Time:
		return v.Format(time.RFC3339)
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// toDecimal 严格解析数值："12abc" 这类部分数字视为非法
func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int32:
		return decimal.NewFromInt32(v), true
	case int64:
		return decimal.NewFromInt(v), true
	case float32:
		return decimal.NewFromFloat32(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	}

	s := strings.TrimSpace(toString(value))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// decimalPlaces 有效小数位数（忽略末尾的 0，与 "12.50" -> 12.5 的展示一致）
func decimalPlaces(d decimal.Decimal) int {
	s := d.String()
	idx := strings.IndexByte(s, '.')
	if idx < 0 {
		return 0
	}
	return len(s) - idx - 1
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// toTime 解析日期，不带时区的格式按 loc 解释
func toTime(value any, loc *time.Location) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	}

	s := strings.TrimSpace(toString(value))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// toFiles 把单个或多个文件值统一为切片
func toFiles(value any) []FileInfo {
	switch v := value.(type) {
	case FileInfo:
		return []FileInfo{v}
	case *FileInfo:
		if v == nil {
			return nil
		}
		return []FileInfo{*v}
	case []FileInfo:
		return v
	case []*FileInfo:
		out := make([]FileInfo, 0, len(v))
		for _, f := range v {
			if f != nil {
				out = append(out, *f)
			}
		}
		return out
	}
	return nil
}
