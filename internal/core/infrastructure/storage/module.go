// Package storage 提供存储管理功能
package storage

import (
	"context"

	"go.uber.org/fx"

	badgerconfig "github.com/weisyn/finality/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/finality/internal/config/storage/memory"
	"github.com/weisyn/finality/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/finality/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/finality/pkg/interfaces/config"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore
	MemoryStore storageInterface.MemoryStore
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 打开 BadgerDB 与内存缓存，停止时依次关闭
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	badgerStore, err := badger.New(badgerconfig.NewFromOptions(params.Provider.GetBadger()), params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	memoryStore, err := memory.New(memoryconfig.NewFromOptions(params.Provider.GetMemory()), params.Logger)
	if err != nil {
		_ = badgerStore.Close()
		return ModuleOutput{}, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if err := memoryStore.Close(); err != nil && params.Logger != nil {
				params.Logger.Warnf("关闭内存存储失败: %v", err)
			}
			return badgerStore.Close()
		},
	})

	return ModuleOutput{BadgerStore: badgerStore, MemoryStore: memoryStore}, nil
}
