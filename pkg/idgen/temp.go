package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// TempPrefix 本地临时 ID 前缀
const TempPrefix = "tmp-"

var (
	defaultGenerator *Snowflake
	defaultOnce      sync.Once
	defaultWorkerID  int64
)

// SetDefaultWorkerID 设置默认生成器的工作节点ID，须在首次调用 Default 之前设置
func SetDefaultWorkerID(workerID int64) error {
	if workerID < 0 || workerID > MaxWorkerID {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkerID, workerID)
	}
	defaultWorkerID = workerID
	return nil
}

// Default 默认生成器（单例）
func Default() *Snowflake {
	defaultOnce.Do(func() {
		// workerID 已校验，不会失败
		defaultGenerator, _ = NewSnowflake(defaultWorkerID)
	})
	return defaultGenerator
}

// NextTempID 生成临时条目 ID，如 "tmp-123456789"
func (s *Snowflake) NextTempID() (string, error) {
	id, err := s.NextID()
	if err != nil {
		return "", err
	}
	return TempPrefix + strconv.FormatInt(id, 10), nil
}

// NewTempID 使用默认生成器生成临时 ID
func NewTempID() (string, error) {
	return Default().NextTempID()
}

// IsTemp 是否为尚未被服务端确认的临时 ID
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}
