// Package idgen 客户端 ID 生成
//
// 购物车条目在服务端确认之前需要一个本地唯一的临时 ID，
// 使用 Snowflake 算法生成，前缀 "tmp-" 与服务端分配的 ID 区分。
// 同一浏览器（进程）内的多个标签页由 WorkerID 区分。
package idgen

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// Epoch 起始时间戳 (2024-01-01 00:00:00 UTC)
	Epoch int64 = 1704067200000

	// 位数分配
	WorkerIDBits = 10 // 工作节点ID位数
	SequenceBits = 12 // 序列号位数

	// 最大值计算(切记不是个数)
	MaxWorkerID = -1 ^ (-1 << WorkerIDBits) // 1023
	MaxSequence = -1 ^ (-1 << SequenceBits) // 4095

	// 位移量
	WorkerIDShift  = SequenceBits
	TimestampShift = SequenceBits + WorkerIDBits

	// 等待下一毫秒时的休眠时间
	sleepDuration = 100 * time.Microsecond

	// 时钟回拨最大容忍时间（毫秒）
	maxClockBackwardTolerance = 5
)

var (
	// ErrInvalidWorkerID 工作节点ID超出有效范围
	ErrInvalidWorkerID = errors.New("invalid worker id: must be between 0 and 1023")

	// ErrClockMovedBackwards 检测到时钟回拨
	ErrClockMovedBackwards = errors.New("clock moved backwards: refusing to generate id")

	// ErrInvalidSnowflakeID 无效的Snowflake ID
	ErrInvalidSnowflakeID = errors.New("invalid snowflake id")
)

// Metrics 生成统计
type Metrics struct {
	IDCount          atomic.Uint64 // 已生成ID总数
	SequenceOverflow atomic.Uint64 // 序列号溢出次数
	ClockBackward    atomic.Uint64 // 时钟回拨次数
}

// Snowflake Snowflake算法的ID生成器（线程安全）
type Snowflake struct {
	mu sync.Mutex

	lastTimestamp int64 // 上次生成ID的时间戳（毫秒）
	workerID      int64
	sequence      int64 // 当前毫秒内的序列号（0-4095）

	now     func() int64
	metrics Metrics
}

// Option 生成器选项
type Option func(*Snowflake)

// WithClock 替换毫秒时钟（测试用）
func WithClock(now func() int64) Option {
	return func(s *Snowflake) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSnowflake 创建生成器
func NewSnowflake(workerID int64, opts ...Option) (*Snowflake, error) {
	if workerID < 0 || workerID > MaxWorkerID {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerID, workerID)
	}
	s := &Snowflake{
		lastTimestamp: -1,
		workerID:      workerID,
		sequence:      -1,
		now:           func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NextID 生成下一个唯一ID
// 小幅时钟回拨（不超过 5ms）时等待时钟追上，超过则返回错误
func (s *Snowflake) NextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	timestamp := s.now()
	if timestamp < s.lastTimestamp {
		s.metrics.ClockBackward.Add(1)
		offset := s.lastTimestamp - timestamp
		if offset > maxClockBackwardTolerance {
			return 0, fmt.Errorf("%w: detected backward drift of %d ms", ErrClockMovedBackwards, offset)
		}
		timestamp = s.waitUntil(s.lastTimestamp)
	}

	if timestamp == s.lastTimestamp {
		if s.sequence >= MaxSequence {
			// 当前毫秒的序列号用完，等待下一毫秒
			s.metrics.SequenceOverflow.Add(1)
			timestamp = s.waitUntil(s.lastTimestamp + 1)
			s.sequence = -1
		}
		s.sequence++
	} else {
		s.sequence = 0
	}
	s.lastTimestamp = timestamp

	// ID结构：时间戳(41位) | 工作节点ID(10位) | 序列号(12位)
	id := ((timestamp - Epoch) << TimestampShift) | (s.workerID << WorkerIDShift) | s.sequence
	s.metrics.IDCount.Add(1)
	return id, nil
}

// waitUntil 等待直到时钟到达 target（毫秒）
func (s *Snowflake) waitUntil(target int64) int64 {
	timestamp := s.now()
	for timestamp < target {
		time.Sleep(sleepDuration)
		timestamp = s.now()
	}
	return timestamp
}

// WorkerID 工作节点ID
func (s *Snowflake) WorkerID() int64 {
	return s.workerID
}

// Stats 生成统计快照
func (s *Snowflake) Stats() map[string]uint64 {
	return map[string]uint64{
		"id_count":          s.metrics.IDCount.Load(),
		"sequence_overflow": s.metrics.SequenceOverflow.Load(),
		"clock_backward":    s.metrics.ClockBackward.Load(),
	}
}

// IDInfo ID 解析结果
type IDInfo struct {
	ID       int64
	Time     time.Time
	WorkerID int64
	Sequence int64
}

// Parse 解析ID
func Parse(id int64) (IDInfo, error) {
	if id <= 0 {
		return IDInfo{}, fmt.Errorf("%w: id must be positive, got %d", ErrInvalidSnowflakeID, id)
	}
	return IDInfo{
		ID:       id,
		Time:     time.UnixMilli((id >> TimestampShift) + Epoch),
		WorkerID: (id >> WorkerIDShift) & MaxWorkerID,
		Sequence: id & MaxSequence,
	}, nil
}
