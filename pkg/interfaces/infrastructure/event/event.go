// Package event 定义事件总线接口
package event

import "github.com/weisyn/finality/pkg/types"

// EventBus 进程内事件总线
//
// handler 为任意函数，参数与 Publish 的 args 一一对应。
type EventBus interface {
	// Subscribe 同步订阅，handler 在 Publish 的 goroutine 中执行
	Subscribe(eventType types.EventType, handler interface{}) error

	// SubscribeAsync 异步订阅，transactional 为 true 时同一 handler 串行执行
	SubscribeAsync(eventType types.EventType, handler interface{}, transactional bool) error

	// Publish 发布事件
	Publish(eventType types.EventType, args ...interface{})

	// Unsubscribe 取消订阅，handler 必须是订阅时传入的同一函数值
	Unsubscribe(eventType types.EventType, handler interface{}) error

	// HasCallback 主题上是否存在订阅者
	HasCallback(eventType types.EventType) bool

	// WaitAsync 等待所有异步 handler 执行完成
	WaitAsync()
}
