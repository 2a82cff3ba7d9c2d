// 基于asaskevich/EventBus的事件总线实现

package event

import (
	"sync/atomic"

	evbus "github.com/asaskevich/EventBus"
	eventconfig "github.com/weisyn/finality/internal/config/event"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/types"
)

// EventBus 是基于asaskevich/EventBus的实现
//
// 事件系统被配置禁用时，订阅静默成功、发布静默丢弃。
type EventBus struct {
	bus    evbus.Bus
	config *eventconfig.Config
	logger log.Logger

	published atomic.Uint64
}

var _ event.EventBus = (*EventBus)(nil)

// New 创建事件总线实例
// 所有事件总线实例必须通过此函数创建，确保配置被正确应用
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	return &EventBus{
		bus:    evbus.New(),
		config: config,
		logger: logger,
	}
}

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType types.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Subscribe(string(eventType), handler)
}

// SubscribeAsync 实现异步订阅
func (eb *EventBus) SubscribeAsync(eventType types.EventType, handler interface{}, transactional bool) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.SubscribeAsync(string(eventType), handler, transactional)
}

// Publish 实现发布
func (eb *EventBus) Publish(eventType types.EventType, args ...interface{}) {
	if !eb.config.IsEnabled() {
		return
	}
	eb.published.Add(1)
	eb.bus.Publish(string(eventType), args...)
}

// Unsubscribe 取消订阅
func (eb *EventBus) Unsubscribe(eventType types.EventType, handler interface{}) error {
	if !eb.config.IsEnabled() {
		return nil
	}
	return eb.bus.Unsubscribe(string(eventType), handler)
}

// HasCallback 主题上是否存在订阅者
func (eb *EventBus) HasCallback(eventType types.EventType) bool {
	if !eb.config.IsEnabled() {
		return false
	}
	return eb.bus.HasCallback(string(eventType))
}

// WaitAsync 等待异步处理完成
func (eb *EventBus) WaitAsync() {
	if !eb.config.IsEnabled() {
		return
	}
	eb.bus.WaitAsync()
}

// PublishedCount 已发布事件数
func (eb *EventBus) PublishedCount() uint64 {
	return eb.published.Load()
}
