package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// EntryState 购物车/收藏夹条目在一次同步中的状态
//
//	pending ──成功──> confirmed ──删除──> removing ──成功──> removed
//	   │                 ^   │                │
//	   └──失败──> rolled-back └─修改─> pending   └──失败──> confirmed
type EntryState string

const (
	StateNone       EntryState = ""
	StatePending    EntryState = "pending"     // 本地已修改，等待服务端确认
	StateConfirmed  EntryState = "confirmed"   // 与服务端一致
	StateRolledBack EntryState = "rolled-back" // 服务端拒绝或网络失败，已撤销（终态）
	StateRemoving   EntryState = "removing"    // 删除请求进行中，界面已隐藏
	StateRemoved    EntryState = "removed"     // 服务端已删除（终态）
)

// ErrInvalidTransition 非法的状态转换
var ErrInvalidTransition = errors.New("invalid entry state transition")

// transitions 合法的状态转换表
var transitions = map[EntryState][]EntryState{
	StateNone:      {StatePending, StateConfirmed},
	StatePending:   {StateConfirmed, StateRolledBack},
	StateConfirmed: {StatePending, StateRemoving},
	StateRemoving:  {StateRemoved, StateConfirmed},
}

// CanTransition 是否允许转换到 next
func (s EntryState) CanTransition(next EntryState) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition 执行状态转换
func (s *EntryState) Transition(next EntryState) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.String(), next.String())
	}
	*s = next
	return nil
}

// IsTerminal 是否为终态
func (s EntryState) IsTerminal() bool {
	return s == StateRolledBack || s == StateRemoved
}

// IsVisible 条目是否应展示给用户
func (s EntryState) IsVisible() bool {
	return s == StatePending || s == StateConfirmed
}

// IsValid 是否为已定义的状态
func (s EntryState) IsValid() bool {
	switch s {
	case StateNone, StatePending, StateConfirmed, StateRolledBack, StateRemoving, StateRemoved:
		return true
	}
	return false
}

// String 实现 Stringer 接口
func (s EntryState) String() string {
	if s == StateNone {
		return "none"
	}
	return string(s)
}

// Value 实现 driver.Valuer 接口，用于数据库存储
func (s EntryState) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan 实现 sql.Scanner 接口，用于从数据库读取
func (s *EntryState) Scan(value any) error {
	if value == nil {
		*s = StateNone
		return nil
	}

	var state EntryState
	switch v := value.(type) {
	case string:
		state = EntryState(v)
	case []byte:
		state = EntryState(v)
	default:
		return fmt.Errorf("cannot scan type %T into EntryState", value)
	}
	if !state.IsValid() {
		return fmt.Errorf("cannot scan %q into EntryState", state)
	}
	*s = state
	return nil
}

// UnmarshalJSON 实现 json.Unmarshaler 接口，拒绝未知状态
func (s *EntryState) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	state := EntryState(str)
	if !state.IsValid() {
		return fmt.Errorf("unknown entry state %q", str)
	}
	*s = state
	return nil
}
