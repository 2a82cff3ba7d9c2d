package event

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	eventconfig "github.com/weisyn/finality/internal/config/event"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/types"
)

var (
	// ErrEventBusDisabled 事件系统被禁用，流无法工作
	ErrEventBusDisabled = errors.New("event bus disabled")
	// ErrFeedClosed 流已关闭
	ErrFeedClosed = errors.New("feed closed")
	// ErrTooManySubscribers 超过主题订阅者上限
	ErrTooManySubscribers = errors.New("too many subscribers")
)

// Feed 单主题的类型化多播流
//
// Feed 在总线上为主题注册一个同步分发器，再把每个事件放入各订阅者的邮箱。
// 邮箱是无界 FIFO，由独立 goroutine 依次调用 handler，因此：
//   - Send 从不等待订阅者处理完成；
//   - 每个订阅者按发布顺序接收事件；
//   - 订阅之前发布的事件不会回放。
//
// 同一总线的同一主题只能创建一个 Feed。
type Feed[T any] struct {
	bus    event.EventBus
	topic  types.EventType
	config *eventconfig.Config
	logger log.Logger

	mu       sync.RWMutex
	subs     map[types.SubscriptionID]*mailbox[T]
	closed   bool
	dispatch func(T)
	wg       sync.WaitGroup
}

// NewFeed 在总线上注册主题分发器
func NewFeed[T any](bus event.EventBus, topic types.EventType, config *eventconfig.Config, logger log.Logger) (*Feed[T], error) {
	if config == nil {
		config = eventconfig.New(nil)
	}
	f := &Feed[T]{
		bus:    bus,
		topic:  topic,
		config: config,
		logger: logger,
		subs:   make(map[types.SubscriptionID]*mailbox[T]),
	}
	f.dispatch = func(v T) { f.deliver(v) }

	if err := bus.Subscribe(topic, f.dispatch); err != nil {
		return nil, fmt.Errorf("注册主题 %s 分发器失败: %w", topic, err)
	}
	if !bus.HasCallback(topic) {
		return nil, fmt.Errorf("%w: topic=%s", ErrEventBusDisabled, topic)
	}
	return f, nil
}

// Send 发布事件，不等待任何订阅者
func (f *Feed[T]) Send(v T) {
	f.bus.Publish(f.topic, v)
}

// Subscribe 注册订阅者
func (f *Feed[T]) Subscribe(handler func(T)) (*FeedSubscription[T], error) {
	if handler == nil {
		return nil, errors.New("handler 不能为空")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrFeedClosed
	}
	if max := f.config.GetMaxSubscribers(); max > 0 && len(f.subs) >= max {
		return nil, fmt.Errorf("%w: topic=%s max=%d", ErrTooManySubscribers, f.topic, max)
	}

	id := types.SubscriptionID(uuid.NewString())
	mb := newMailbox(id, handler, f.logger)
	f.subs[id] = mb

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		mb.run()
	}()

	return &FeedSubscription[T]{id: id, feed: f}, nil
}

// SubscriberCount 当前订阅者数量
func (f *Feed[T]) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Close 注销分发器并停止所有订阅者，未投递的事件被丢弃
func (f *Feed[T]) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	subs := f.subs
	f.subs = make(map[types.SubscriptionID]*mailbox[T])
	f.mu.Unlock()

	for _, mb := range subs {
		mb.close()
	}
	f.wg.Wait()

	if err := f.bus.Unsubscribe(f.topic, f.dispatch); err != nil {
		return fmt.Errorf("注销主题 %s 分发器失败: %w", f.topic, err)
	}
	return nil
}

// deliver 总线分发器，在 Publish 的 goroutine 中执行
func (f *Feed[T]) deliver(v T) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	warnAt := f.config.GetBacklogWarnThreshold()
	for _, mb := range f.subs {
		backlog := mb.push(v)
		if warnAt > 0 && backlog > 0 && backlog%warnAt == 0 {
			f.logger.Warnf("订阅者积压: topic=%s subscription=%s backlog=%d", f.topic, mb.id, backlog)
		}
	}
}

func (f *Feed[T]) remove(id types.SubscriptionID) {
	f.mu.Lock()
	mb, ok := f.subs[id]
	delete(f.subs, id)
	f.mu.Unlock()

	if ok {
		mb.close()
	}
}

// FeedSubscription Feed 的订阅句柄
type FeedSubscription[T any] struct {
	id   types.SubscriptionID
	feed *Feed[T]
	once sync.Once
}

// ID 订阅标识
func (s *FeedSubscription[T]) ID() types.SubscriptionID { return s.id }

// Unsubscribe 停止接收，可重复调用
func (s *FeedSubscription[T]) Unsubscribe() {
	s.once.Do(func() { s.feed.remove(s.id) })
}

// mailbox 单个订阅者的无界 FIFO
type mailbox[T any] struct {
	id      types.SubscriptionID
	handler func(T)
	logger  log.Logger

	mu     sync.Mutex
	queue  []T
	closed bool
	signal chan struct{}
	done   chan struct{}
}

func newMailbox[T any](id types.SubscriptionID, handler func(T), logger log.Logger) *mailbox[T] {
	return &mailbox[T]{
		id:      id,
		handler: handler,
		logger:  logger,
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// push 入队并返回当前积压长度，已关闭时返回 0
func (m *mailbox[T]) push(v T) int {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}
	m.queue = append(m.queue, v)
	backlog := len(m.queue)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return backlog
}

func (m *mailbox[T]) pop() (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	if m.closed || len(m.queue) == 0 {
		return zero, false
	}
	v := m.queue[0]
	m.queue[0] = zero
	m.queue = m.queue[1:]
	return v, true
}

func (m *mailbox[T]) run() {
	for {
		select {
		case <-m.done:
			return
		case <-m.signal:
		}
		for {
			v, ok := m.pop()
			if !ok {
				break
			}
			m.invoke(v)
		}
	}
}

// invoke 订阅者 panic 不影响其他订阅者与后续事件
func (m *mailbox[T]) invoke(v T) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Errorf("订阅者处理事件 panic: subscription=%s err=%v", m.id, r)
		}
	}()
	m.handler(v)
}

func (m *mailbox[T]) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.queue = nil
	close(m.done)
}
