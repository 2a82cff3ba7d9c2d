// Package event 提供事件管理功能
package event

import (
	"context"

	"go.uber.org/fx"

	eventconfig "github.com/weisyn/finality/internal/config/event"
	logimpl "github.com/weisyn/finality/internal/core/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/config"
	eventInterface "github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
)

// ModuleInput 事件模块输入依赖
type ModuleInput struct {
	fx.In

	Provider  config.Provider
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 事件模块输出服务
type ModuleOutput struct {
	fx.Out

	EventBus    eventInterface.EventBus
	EventConfig *eventconfig.Config
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建事件总线，停止时等待异步处理完成
func ProvideServices(input ModuleInput) ModuleOutput {
	cfg := eventconfig.NewFromOptions(input.Provider.GetEvent())
	bus := New(cfg, logimpl.NewModuleLogger(input.Logger, "event"))

	input.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			bus.WaitAsync()
			return nil
		},
	})

	return ModuleOutput{EventBus: bus, EventConfig: cfg}
}
