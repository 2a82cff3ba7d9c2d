package clock

import (
	"sync/atomic"
	"time"

	infraClock "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
)

var _ infraClock.Clock = (*DeterministicClock)(nil)

// DeterministicClock 基于固定基准时间和递增序列，提供确定性时间源
//
// 每次读取前进 1ms，同一调用序列在任意机器上得到相同的区块时间戳。
type DeterministicClock struct {
	baseTime time.Time
	sequence atomic.Int64
}

func NewDeterministicClock(base time.Time) *DeterministicClock {
	return &DeterministicClock{baseTime: base}
}

func (c *DeterministicClock) Now() time.Time {
	return c.baseTime.Add(time.Duration(c.sequence.Add(1)) * time.Millisecond)
}

func (c *DeterministicClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *DeterministicClock) Unix() int64                     { return c.Now().Unix() }
func (c *DeterministicClock) UnixNano() int64                 { return c.Now().UnixNano() }
