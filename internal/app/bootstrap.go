package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	config "github.com/weisyn/finality/internal/config"
	"github.com/weisyn/finality/internal/core/blockchain/block"
	"github.com/weisyn/finality/internal/core/infrastructure/clock"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto"
	"github.com/weisyn/finality/internal/core/infrastructure/event"
	log "github.com/weisyn/finality/internal/core/infrastructure/log"
	"github.com/weisyn/finality/internal/core/infrastructure/storage"
	"github.com/weisyn/finality/internal/core/infrastructure/writegate"
	"github.com/weisyn/finality/internal/core/ledger"
	"github.com/weisyn/finality/internal/core/pipeline"
	"github.com/weisyn/finality/internal/core/simulator"
	"github.com/weisyn/finality/internal/core/validation"
	configintf "github.com/weisyn/finality/pkg/interfaces/config"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	opts  *options
	fxApp *fx.App

	driver    *pipeline.Driver
	simulator *simulator.Simulator
	query     ledgerintf.BlockQuery
	logger    logintf.Logger
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层：配置、日志、密码学、时钟
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(),
		log.Module(),
		crypto.Module(),
		clock.Module(),
	}
}

// SetupCommunicationLayer 通信与数据层：事件总线、存储、写门闸
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
		storage.Module(),
		writegate.Module(),
	}
}

// SetupBusinessLayer 业务层，按依赖顺序加载：账本 -> 验证 -> 区块 -> 模拟器 -> 流水线
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		ledger.Module(),
		validation.Module(),
		block.Module(),
		simulator.Module(),
		pipeline.Module(),
	}
}

// SetupApplicationLayer 应用层：配置来源与对外句柄
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configintf.AppOptions { return b.opts }),
		fx.Populate(&b.driver, &b.simulator, &b.query, &b.logger),
	}
}

// CreateFxApp 创建 fx 应用
func (b *Bootstrap) CreateFxApp() error {
	if err := b.opts.resolve(); err != nil {
		return err
	}

	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupCommunicationLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)

	b.fxApp = fx.New(
		fx.Options(modules...),
		fx.NopLogger,
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("装配模块失败: %w", err)
	}
	return nil
}

// StartApp 启动应用
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	b.logger.Info("应用已启动")
	return nil
}

// StopApp 停止应用
func (b *Bootstrap) StopApp(ctx context.Context) error {
	b.logger.Info("正在停止应用")
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
