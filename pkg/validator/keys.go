package validator

import (
	"fmt"
	"sort"
)

// UnknownFields 返回 values 中未注册规则的字段名（已排序）
// 与场景无关：当前场景下未激活的字段仍视为已知
func (o *Orchestrator) UnknownFields(values Values) []string {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var unknown []string
	for field := range values {
		if _, ok := o.rules[field]; !ok {
			unknown = append(unknown, field)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// CheckKeys 存在未知字段时返回 ErrUnknownField
func (o *Orchestrator) CheckKeys(values Values) error {
	unknown := o.UnknownFields(values)
	if len(unknown) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrUnknownField, o.name, unknown)
}
