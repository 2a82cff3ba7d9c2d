// Package log 提供日志管理功能
package log

import (
	"fmt"

	logconfig "github.com/weisyn/finality/internal/config/log"
	"github.com/weisyn/finality/pkg/interfaces/config"
	logInterface "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleParams 定义日志模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider
}

// ModuleOutput 定义日志模块的输出结构
type ModuleOutput struct {
	fx.Out

	Logger    logInterface.Logger
	ZapLogger *zap.Logger // 供 fx 事件日志等需要 zap 的场景使用
}

// Module 返回日志模块
func Module() fx.Option {
	return fx.Module("log",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据配置初始化日志记录器并替换全局记录器
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	logger, err := New(logconfig.NewFromOptions(params.Provider.GetLog()))
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("根据用户配置创建日志记录器失败: %w", err)
	}

	SetLogger(logger)

	return ModuleOutput{
		Logger:    logger,
		ZapLogger: logger.GetZapLogger(),
	}, nil
}

// NewModuleLogger 创建带 module 字段的 logger
//
// baseLogger 为 nil 时返回丢弃输出的 logger，调用方无需判空。
func NewModuleLogger(baseLogger logInterface.Logger, module string) logInterface.Logger {
	if baseLogger == nil {
		return NewNopLogger()
	}
	return baseLogger.With("module", module)
}
