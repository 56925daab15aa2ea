package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRejected 服务端返回 success:false
	ErrRejected = errors.New("api: request rejected")
	// ErrTransport 网络错误或响应无法解析
	ErrTransport = errors.New("api: transport error")
	// ErrUnauthorized 未登录或登录已过期（401）
	ErrUnauthorized = errors.New("api: unauthorized")
	// ErrInvalidToken token 无法解析
	ErrInvalidToken = errors.New("api: invalid token")
)

// RejectedError 服务端拒绝，Message 原样展示给用户
type RejectedError struct {
	Status  int
	Message string
	// Fields 表单提交时服务端返回的字段错误
	Fields map[string]string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: rejected with status %d", e.Status)
	}
	return fmt.Sprintf("api: rejected with status %d: %s", e.Status, e.Message)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

// UserMessage 服务端给出的提示
func (e *RejectedError) UserMessage() string {
	return e.Message
}

// unauthorizedError 401，保留服务端提示
type unauthorizedError struct {
	message string
}

func (e *unauthorizedError) Error() string {
	if e.message == "" {
		return ErrUnauthorized.Error()
	}
	return ErrUnauthorized.Error() + ": " + e.message
}

func (e *unauthorizedError) Is(target error) bool {
	return target == ErrUnauthorized
}

func (e *unauthorizedError) UserMessage() string {
	if e.message == "" {
		return "Please login first"
	}
	return e.message
}

func transportError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransport, fmt.Sprintf(format, args...))
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", code)
}
