// Package config provides configuration provider interfaces.
package config

import (
	clockconfig "github.com/weisyn/finality/internal/config/clock"
	eventconfig "github.com/weisyn/finality/internal/config/event"
	genesisconfig "github.com/weisyn/finality/internal/config/genesis"
	logconfig "github.com/weisyn/finality/internal/config/log"
	nodeconfig "github.com/weisyn/finality/internal/config/node"
	simulatorconfig "github.com/weisyn/finality/internal/config/simulator"
	badgerconfig "github.com/weisyn/finality/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/finality/internal/config/storage/memory"
	"github.com/weisyn/finality/pkg/types"
)

// Provider 配置提供者接口
//
// 每个 Get 方法返回已合并默认值与用户配置的完整选项。
type Provider interface {
	GetLog() *logconfig.LogOptions

	GetEvent() *eventconfig.EventOptions

	GetBadger() *badgerconfig.BadgerOptions

	GetMemory() *memoryconfig.MemoryOptions

	GetClock() *clockconfig.ClockOptions

	GetSimulator() *simulatorconfig.SimulatorOptions

	// GetGenesis 返回创世配置（含节点文件解析能力）
	GetGenesis() *genesisconfig.Config

	GetNode() *nodeconfig.NodeOptions

	// GetAppConfig 原始用户配置
	GetAppConfig() *types.AppConfig
}
