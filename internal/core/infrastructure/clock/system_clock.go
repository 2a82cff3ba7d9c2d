// Package clock 提供系统、NTP、确定性与测试时钟实现
package clock

import (
	"time"

	infraClock "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
)

// SystemClock 使用系统真实时间
type SystemClock struct{}

func NewSystemClock() infraClock.Clock { return SystemClock{} }

func (SystemClock) Now() time.Time                  { return time.Now() }
func (SystemClock) Since(t time.Time) time.Duration { return time.Since(t) }
func (SystemClock) Unix() int64                     { return time.Now().Unix() }
func (SystemClock) UnixNano() int64                 { return time.Now().UnixNano() }
