package idgen

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_NextID(t *testing.T) {
	sf, err := NewSnowflake(7)
	require.NoError(t, err)

	id1, err := sf.NextID()
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))

	id2, err := sf.NextID()
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	ids := make(map[int64]bool)
	for i := 0; i < 10000; i++ {
		id, err := sf.NextID()
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique")
		ids[id] = true
	}
	assert.Equal(t, uint64(10002), sf.Stats()["id_count"])
}

func TestSnowflake_InvalidWorkerID(t *testing.T) {
	_, err := NewSnowflake(-1)
	assert.ErrorIs(t, err, ErrInvalidWorkerID)

	_, err = NewSnowflake(MaxWorkerID + 1)
	assert.ErrorIs(t, err, ErrInvalidWorkerID)

	assert.ErrorIs(t, SetDefaultWorkerID(2048), ErrInvalidWorkerID)
}

func TestSnowflake_SequenceOverflow(t *testing.T) {
	now := Epoch + 1000
	var mu sync.Mutex
	calls := 0
	clock := func() int64 {
		mu.Lock()
		defer mu.Unlock()
		calls++
		// 前 MaxSequence+2 次调用停留在同一毫秒
		if calls > MaxSequence+2 {
			return now + 1
		}
		return now
	}

	sf, err := NewSnowflake(1, WithClock(clock))
	require.NoError(t, err)

	var last int64
	for i := 0; i <= MaxSequence+1; i++ {
		id, err := sf.NextID()
		require.NoError(t, err)
		assert.Greater(t, id, last)
		last = id
	}

	info, err := Parse(last)
	require.NoError(t, err)
	assert.Equal(t, now+1, info.Time.UnixMilli())
	assert.Equal(t, int64(0), info.Sequence)
	assert.Equal(t, uint64(1), sf.Stats()["sequence_overflow"])
}

func TestSnowflake_ClockBackward(t *testing.T) {
	now := Epoch + 10_000
	sf, err := NewSnowflake(1, WithClock(func() int64 { return now }))
	require.NoError(t, err)

	_, err = sf.NextID()
	require.NoError(t, err)

	now -= 100
	_, err = sf.NextID()
	assert.ErrorIs(t, err, ErrClockMovedBackwards)
	assert.Equal(t, uint64(1), sf.Stats()["clock_backward"])
}

func TestParse(t *testing.T) {
	sf, err := NewSnowflake(513)
	require.NoError(t, err)

	id, err := sf.NextID()
	require.NoError(t, err)

	info, err := Parse(id)
	require.NoError(t, err)
	assert.Equal(t, int64(513), info.WorkerID)
	assert.Equal(t, id, info.ID)

	_, err = Parse(0)
	assert.ErrorIs(t, err, ErrInvalidSnowflakeID)
}

func TestTempID(t *testing.T) {
	id, err := NewTempID()
	require.NoError(t, err)
	assert.True(t, IsTemp(id))
	assert.False(t, IsTemp("42"))

	other, err := Default().NextTempID()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestSnowflake_Concurrent(t *testing.T) {
	sf, err := NewSnowflake(3)
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		ids = make(map[int64]struct{})
	)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				id, err := sf.NextID()
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				ids[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, ids, 8*500)
}
