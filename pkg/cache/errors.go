package cache

import (
	"errors"
	"fmt"
)

// DefaultFailureMessage 服务端没有给出原因时展示给用户的提示
const DefaultFailureMessage = "Something went wrong. Please try again."

var (
	// ErrItemNotFound 缓存中没有该条目
	ErrItemNotFound = errors.New("cache: item not found")
	// ErrRolledBack 乐观修改已撤销
	ErrRolledBack = errors.New("cache: change rolled back")
	// ErrUnsupported 当前缓存类型不支持该操作（如收藏夹修改数量）
	ErrUnsupported = errors.New("cache: operation not supported")
	// ErrCorruptBlob 持久化数据无法解析
	ErrCorruptBlob = errors.New("cache: corrupt blob")
)

// MutationError 远端同步失败，本地修改已回滚
type MutationError struct {
	Op        string
	ItemID    string
	ProductID int64
	Err       error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("cache: %s product %d (item %s) rolled back: %v", e.Op, e.ProductID, e.ItemID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrRolledBack) 成立
func (e *MutationError) Is(target error) bool {
	return target == ErrRolledBack
}

// userMessager 服务端拒绝时携带的提示
type userMessager interface {
	UserMessage() string
}

// UserMessage 给用户看的提示：优先使用服务端给出的原因
func (e *MutationError) UserMessage() string {
	return UserMessage(e.Err)
}

// UserMessage 从任意错误中提取可展示给用户的提示
func UserMessage(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return DefaultFailureMessage
}
