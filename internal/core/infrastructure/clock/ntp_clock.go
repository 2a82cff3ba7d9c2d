package clock

import (
	"sync"
	"time"

	"github.com/beevik/ntp"

	infraClock "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
)

var _ infraClock.Clock = (*NTPClock)(nil)

// queryFn 返回本地时钟相对服务器的偏移
type queryFn func(server string) (time.Duration, error)

func queryNTP(server string) (time.Duration, error) {
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, err
	}
	if err := resp.Validate(); err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// NTPClock 通过NTP周期性校正偏移的时钟实现
//
// 同步失败不阻塞读取：保留上次偏移并按指数退避重试。
type NTPClock struct {
	server         string
	syncInterval   time.Duration
	backoffInitial time.Duration
	backoffMax     time.Duration
	query          queryFn

	mu        sync.Mutex
	offset    time.Duration
	lastSync  time.Time
	lastTry   time.Time
	backoff   time.Duration
	lastError error
}

// NewNTPClock 创建NTP时钟，初始化同步失败不致命
func NewNTPClock(server string, syncInterval, backoffInitial, backoffMax time.Duration) *NTPClock {
	return newNTPClock(server, syncInterval, backoffInitial, backoffMax, queryNTP)
}

func newNTPClock(server string, syncInterval, backoffInitial, backoffMax time.Duration, query queryFn) *NTPClock {
	c := &NTPClock{
		server:         server,
		syncInterval:   syncInterval,
		backoffInitial: backoffInitial,
		backoffMax:     backoffMax,
		query:          query,
	}
	c.mu.Lock()
	c.syncLocked(time.Now())
	c.mu.Unlock()
	return c
}

func (c *NTPClock) Now() time.Time {
	local := time.Now()
	c.mu.Lock()
	c.maybeSyncLocked(local)
	offset := c.offset
	c.mu.Unlock()
	return local.Add(offset)
}

func (c *NTPClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }
func (c *NTPClock) Unix() int64                     { return c.Now().Unix() }
func (c *NTPClock) UnixNano() int64                 { return c.Now().UnixNano() }

// Health 返回当前健康状态：最近一次同步成功即为健康
func (c *NTPClock) Health() (healthy bool, offset time.Duration, lastSync time.Time, lastError error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError == nil && !c.lastSync.IsZero(), c.offset, c.lastSync, c.lastError
}

func (c *NTPClock) maybeSyncLocked(now time.Time) {
	effective := c.syncInterval
	if c.backoff > 0 {
		effective = c.backoff
	}
	if now.Sub(c.lastTry) < effective {
		return
	}
	c.syncLocked(now)
}

func (c *NTPClock) syncLocked(now time.Time) {
	c.lastTry = now
	offset, err := c.query(c.server)
	if err != nil {
		c.lastError = err
		if c.backoff == 0 {
			c.backoff = c.backoffInitial
		} else {
			c.backoff *= 2
		}
		if c.backoff > c.backoffMax {
			c.backoff = c.backoffMax
		}
		return
	}
	c.offset = offset
	c.lastSync = now
	c.lastError = nil
	c.backoff = 0
}
