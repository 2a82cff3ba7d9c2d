package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/finality/internal/config/event"
	logimpl "github.com/weisyn/finality/internal/core/infrastructure/log"
	"github.com/weisyn/finality/pkg/types"
)

func newTestBus() *EventBus {
	return New(eventconfig.New(nil), logimpl.NewNopLogger())
}

func TestEventBus(t *testing.T) {
	eventBus := newTestBus()

	t.Run("同步订阅", func(t *testing.T) {
		var received string
		handler := func(data string) { received = data }

		require.NoError(t, eventBus.Subscribe("test-event", handler))
		assert.True(t, eventBus.HasCallback("test-event"))

		eventBus.Publish("test-event", "hello world")
		assert.Equal(t, "hello world", received)

		require.NoError(t, eventBus.Unsubscribe("test-event", handler))
		received = ""
		eventBus.Publish("test-event", "should not receive")
		assert.Empty(t, received, "取消订阅后不应再接收事件")
	})

	t.Run("异步订阅", func(t *testing.T) {
		var mu sync.Mutex
		var received string
		handler := func(data string) {
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			received = data
			mu.Unlock()
		}

		require.NoError(t, eventBus.SubscribeAsync("async-event", handler, false))
		eventBus.Publish("async-event", "async data")
		eventBus.WaitAsync()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "async data", received)
	})

	assert.EqualValues(t, 3, eventBus.PublishedCount())
}

func TestEventBusDisabled(t *testing.T) {
	cfg := eventconfig.New(&types.UserEventConfig{Enabled: types.BoolPtr(false)})
	eventBus := New(cfg, logimpl.NewNopLogger())

	called := false
	require.NoError(t, eventBus.Subscribe("t", func() { called = true }))
	eventBus.Publish("t")

	assert.False(t, called)
	assert.False(t, eventBus.HasCallback("t"))
	assert.Zero(t, eventBus.PublishedCount())

	_, err := NewFeed[int](eventBus, "feed", cfg, logimpl.NewNopLogger())
	assert.ErrorIs(t, err, ErrEventBusDisabled, "事件系统禁用时流无法创建")
}

// collector 记录接收到的事件
type collector struct {
	mu     sync.Mutex
	values []int
	notify chan struct{}
}

func newCollector() *collector {
	return &collector{notify: make(chan struct{}, 1024)}
}

func (c *collector) handle(v int) {
	c.mu.Lock()
	c.values = append(c.values, v)
	c.mu.Unlock()
	c.notify <- struct{}{}
}

func (c *collector) waitFor(t *testing.T, n int) []int {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-c.notify:
		case <-time.After(2 * time.Second):
			t.Fatalf("等待第 %d 个事件超时", i+1)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.values...)
}

func TestFeedOrderingAndMulticast(t *testing.T) {
	feed, err := NewFeed[int](newTestBus(), "numbers", nil, logimpl.NewNopLogger())
	require.NoError(t, err)
	defer feed.Close()

	a, b := newCollector(), newCollector()
	subA, err := feed.Subscribe(a.handle)
	require.NoError(t, err)
	_, err = feed.Subscribe(b.handle)
	require.NoError(t, err)
	assert.NotEqual(t, subA.ID(), types.SubscriptionID(""))
	assert.Equal(t, 2, feed.SubscriberCount())

	for i := 1; i <= 50; i++ {
		feed.Send(i)
	}

	want := make([]int, 50)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, a.waitFor(t, 50), "每个订阅者按发布顺序接收")
	assert.Equal(t, want, b.waitFor(t, 50))
}

func TestFeedSlowSubscriberDoesNotBlockSend(t *testing.T) {
	feed, err := NewFeed[int](newTestBus(), "slow", nil, logimpl.NewNopLogger())
	require.NoError(t, err)
	defer feed.Close()

	release := make(chan struct{})
	fast := newCollector()
	_, err = feed.Subscribe(func(int) { <-release })
	require.NoError(t, err)
	_, err = feed.Subscribe(fast.handle)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			feed.Send(i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("慢订阅者阻塞了发布")
	}
	assert.Len(t, fast.waitFor(t, 10), 10)
	close(release)
}

func TestFeedNoReplayAndUnsubscribe(t *testing.T) {
	feed, err := NewFeed[int](newTestBus(), "replay", nil, logimpl.NewNopLogger())
	require.NoError(t, err)
	defer feed.Close()

	feed.Send(1)

	late := newCollector()
	sub, err := feed.Subscribe(late.handle)
	require.NoError(t, err)
	feed.Send(2)
	assert.Equal(t, []int{2}, late.waitFor(t, 1), "订阅前的事件不回放")

	sub.Unsubscribe()
	sub.Unsubscribe()
	feed.Send(3)
	time.Sleep(20 * time.Millisecond)

	late.mu.Lock()
	defer late.mu.Unlock()
	assert.Equal(t, []int{2}, late.values)
	assert.Zero(t, feed.SubscriberCount())
}

func TestFeedPanicIsolation(t *testing.T) {
	feed, err := NewFeed[int](newTestBus(), "panic", nil, logimpl.NewNopLogger())
	require.NoError(t, err)
	defer feed.Close()

	c := newCollector()
	_, err = feed.Subscribe(func(v int) {
		if v == 1 {
			panic("boom")
		}
		c.handle(v)
	})
	require.NoError(t, err)

	feed.Send(1)
	feed.Send(2)
	assert.Equal(t, []int{2}, c.waitFor(t, 1), "panic 之后继续处理后续事件")
}

func TestFeedLimitsAndClose(t *testing.T) {
	cfg := eventconfig.NewFromOptions(&eventconfig.EventOptions{Enabled: true, MaxSubscribers: 1})
	bus := New(cfg, logimpl.NewNopLogger())
	feed, err := NewFeed[int](bus, "limited", cfg, logimpl.NewNopLogger())
	require.NoError(t, err)

	_, err = feed.Subscribe(func(int) {})
	require.NoError(t, err)
	_, err = feed.Subscribe(func(int) {})
	assert.ErrorIs(t, err, ErrTooManySubscribers)

	_, err = feed.Subscribe(nil)
	assert.Error(t, err)

	require.NoError(t, feed.Close())
	require.NoError(t, feed.Close())
	assert.False(t, bus.HasCallback("limited"))

	_, err = feed.Subscribe(func(int) {})
	assert.ErrorIs(t, err, ErrFeedClosed)
}
