package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeJSON 把 JSON 对象解码为表单值
// 数值保留为 json.Number 以免精度丢失；文件字段解码为 []FileInfo（单个对象或数组均可）
func (o *Orchestrator) DecodeJSON(data []byte) (Values, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValues, err)
	}

	values := make(Values, len(raw))
	for field, msg := range raw {
		if o.hasKind(field, KindFile) {
			files, err := decodeFiles(msg)
			if err != nil {
				return nil, fmt.Errorf("%w: field '%s': %v", ErrInvalidValues, field, err)
			}
			values[field] = files
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w: field '%s': %v", ErrInvalidValues, field, err)
		}
		values[field] = v
	}
	return values, nil
}

func (o *Orchestrator) hasKind(field string, kind Kind) bool {
	for _, r := range o.Rules(field) {
		if r.Kind == kind {
			return true
		}
	}
	return false
}

func decodeFiles(msg json.RawMessage) ([]FileInfo, error) {
	trimmed := bytes.TrimSpace(msg)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '[':
		var files []FileInfo
		err := json.Unmarshal(trimmed, &files)
		return files, err
	default:
		var file FileInfo
		if err := json.Unmarshal(trimmed, &file); err != nil {
			return nil, err
		}
		return []FileInfo{file}, nil
	}
}
