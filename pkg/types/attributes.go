package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"maps"
	"sort"
)

// Attributes 条目的附加属性（尺码、颜色等），键值均为字符串
// 同一商品不同属性组合在服务端仍视为同一条目，属性只用于展示
type Attributes map[string]string

// Get 获取属性
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a[key]
	return v, ok
}

// Set 设置属性，nil map 返回新建的 map
func (a Attributes) Set(key, value string) Attributes {
	if a == nil {
		a = make(Attributes, 1)
	}
	a[key] = value
	return a
}

// Keys 排序后的键
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone 深拷贝
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Equal 内容是否相同（nil 与空 map 视为相同）
func (a Attributes) Equal(other Attributes) bool {
	return maps.Equal(a, other)
}

// Value 实现 driver.Valuer 接口，以 JSON 存储
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan 实现 sql.Scanner 接口
func (a *Attributes) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("type assertion to []byte or string failed")
	}
	if len(data) == 0 {
		*a = nil
		return nil
	}

	result := make(Attributes)
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	*a = result
	return nil
}
