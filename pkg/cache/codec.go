package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"

	"katydid-storefront/pkg/idgen"
	"katydid-storefront/pkg/types"
)

const (
	blobVersion = 1
	// flagSnappy 压缩 blob 的首字节；未压缩的 blob 是以 '{' 开头的 JSON
	flagSnappy byte = 0x01
)

// blob 持久化格式
type blob struct {
	Version   int       `json:"version"`
	Kind      Kind      `json:"kind"`
	Entries   []Entry   `json:"entries"`
	Aggregate Aggregate `json:"aggregate"`
	SavedAt   time.Time `json:"saved_at"`
}

func encodeBlob(b blob, compress bool) ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	if !compress {
		return data, nil
	}
	out := make([]byte, 1, 1+snappy.MaxEncodedLen(len(data)))
	out[0] = flagSnappy
	return append(out, snappy.Encode(nil, data)...), nil
}

func decodeBlob(data []byte) (blob, error) {
	var b blob
	if len(data) == 0 {
		return b, fmt.Errorf("%w: empty", ErrCorruptBlob)
	}

	raw := data
	switch data[0] {
	case '{':
	case flagSnappy:
		decoded, err := snappy.Decode(nil, data[1:])
		if err != nil {
			return b, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
		}
		raw = decoded
	default:
		return b, fmt.Errorf("%w: unknown format 0x%02x", ErrCorruptBlob, data[0])
	}

	if err := json.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("%w: %v", ErrCorruptBlob, err)
	}
	if b.Version > blobVersion {
		return b, fmt.Errorf("%w: unsupported version %d", ErrCorruptBlob, b.Version)
	}
	return b, nil
}

// normalize 加载后整理条目：
// 带临时 ID 的等待中条目从未被服务端确认，按撤销处理；
// 其余删除中/等待中的条目按已确认处理，由下一次 Refresh 与服务端对齐；
// 终态条目与重复的商品被丢弃；购物车数量小于 1 按 1 处理
func normalize(kind Kind, entries []Entry) []*Entry {
	out := make([]*Entry, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for i := range entries {
		e := entries[i]
		if e.State.IsTerminal() || seen[e.ProductID] {
			continue
		}
		if e.State == types.StatePending && idgen.IsTemp(e.ItemID) {
			continue
		}
		switch e.State {
		case types.StateRemoving, types.StatePending, types.StateNone:
			e.State = types.StateConfirmed
		}
		if kind.tracksQuantity() {
			e.Quantity = max(e.Quantity, 1)
		} else {
			e.Quantity = 0
		}
		seen[e.ProductID] = true
		out = append(out, &e)
	}
	return out
}

func checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}
