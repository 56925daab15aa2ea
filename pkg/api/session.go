package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role 会话角色，决定调用游客接口还是用户接口
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Claims token 中的声明
type Claims struct {
	Role  string `json:"role"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Session 当前会话
type Session struct {
	Subject   string
	Email     string
	Role      Role
	ExpiresAt time.Time
}

// GuestSession 未登录
func GuestSession() Session {
	return Session{Role: RoleGuest}
}

// IsGuest 是否为游客
func (s Session) IsGuest() bool {
	return s.Role == RoleGuest || s.Role == ""
}

// Expired 是否已过期；没有过期时间的 token 不过期
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// ParseSession 解析 token 声明
// 客户端没有签名密钥，只读取声明，不校验签名；鉴权仍由服务端完成
func ParseSession(token string) (Session, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role := Role(claims.Role)
	switch role {
	case RoleUser, RoleAdmin:
	default:
		role = RoleUser
	}

	s := Session{Subject: claims.Subject, Email: claims.Email, Role: role}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}
