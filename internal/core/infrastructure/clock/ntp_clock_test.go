package clock

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clockconfig "github.com/weisyn/finality/internal/config/clock"
)

type fakeNTP struct {
	mu     sync.Mutex
	offset time.Duration
	err    error
	calls  int
}

func (f *fakeNTP) query(string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.offset, f.err
}

func TestNTPClockAppliesOffset(t *testing.T) {
	fake := &fakeNTP{offset: time.Hour}
	c := newNTPClock("test", time.Hour, time.Second, time.Minute, fake.query)

	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), c.Now().Unix(), 2)

	healthy, offset, lastSync, err := c.Health()
	assert.True(t, healthy)
	assert.Equal(t, time.Hour, offset)
	assert.False(t, lastSync.IsZero())
	assert.NoError(t, err)
	assert.Equal(t, 1, fake.calls, "同步间隔内不重复查询")
}

func TestNTPClockFailureBackoff(t *testing.T) {
	fake := &fakeNTP{err: errors.New("timeout")}
	c := newNTPClock("test", time.Hour, time.Hour, 2*time.Hour, fake.query)

	healthy, offset, _, err := c.Health()
	assert.False(t, healthy)
	assert.Zero(t, offset)
	assert.Error(t, err)

	// 失败后仍返回本地时间
	assert.InDelta(t, time.Now().Unix(), c.Now().Unix(), 2)
	assert.Equal(t, time.Hour, c.backoff)

	c.mu.Lock()
	c.syncLocked(time.Now())
	c.syncLocked(time.Now())
	c.mu.Unlock()
	assert.Equal(t, 2*time.Hour, c.backoff, "退避不超过上限")
}

func TestDeterministicClock(t *testing.T) {
	base := time.Unix(1700000000, 0)
	a := NewDeterministicClock(base)
	b := NewDeterministicClock(base)

	for i := 0; i < 3; i++ {
		assert.Equal(t, a.Now(), b.Now())
	}
	assert.Equal(t, base.Add(4*time.Millisecond).UnixNano(), a.UnixNano())
}

func TestMockClock(t *testing.T) {
	base := time.Unix(100, 0)
	c := NewMockClock(base)
	assert.Equal(t, base, c.Now())
	c.Advance(time.Second)
	assert.Equal(t, int64(101), c.Unix())
	c.Set(base)
	assert.Equal(t, time.Second, c.Since(base.Add(-time.Second)))
}

func TestNewFromOptions(t *testing.T) {
	testCases := []struct {
		name    string
		typ     string
		wantErr bool
	}{
		{"系统时钟", clockconfig.TypeSystem, false},
		{"默认", "", false},
		{"确定性时钟", clockconfig.TypeDeterministic, false},
		{"未知类型", "sundial", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := clockconfig.New(nil).GetOptions()
			opts.Type = tc.typ
			c, err := NewFromOptions(opts, nil)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, c.Now().IsZero())
		})
	}
}

func TestClockMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	fetch := func() (bool, time.Duration, time.Time, error) {
		return true, 2 * time.Second, time.Unix(50, 0), nil
	}
	require.NoError(t, RegisterClockMetrics(registry, fetch))
	require.NoError(t, RegisterClockMetrics(registry, fetch), "重复注册不报错")

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}
