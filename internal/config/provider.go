// Package config 提供应用配置管理功能
package config

import (
	"encoding/json"
	"fmt"
	"os"

	clockconfig "github.com/weisyn/finality/internal/config/clock"
	eventconfig "github.com/weisyn/finality/internal/config/event"
	genesisconfig "github.com/weisyn/finality/internal/config/genesis"
	logconfig "github.com/weisyn/finality/internal/config/log"
	nodeconfig "github.com/weisyn/finality/internal/config/node"
	simulatorconfig "github.com/weisyn/finality/internal/config/simulator"
	badgerconfig "github.com/weisyn/finality/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/finality/internal/config/storage/memory"
	"github.com/weisyn/finality/pkg/interfaces/config"
	"github.com/weisyn/finality/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

var _ config.Provider = (*Provider)(nil)

// NewProvider 创建配置提供者，appConfig 为 nil 时全部使用默认值
func NewProvider(appConfig *types.AppConfig) config.Provider {
	if appConfig == nil {
		appConfig = &types.AppConfig{}
	}
	return &Provider{appConfig: appConfig}
}

// LoadAppConfig 从 JSON 文件加载应用配置
func LoadAppConfig(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return ParseAppConfig(data)
}

// ParseAppConfig 解析 JSON 应用配置
func ParseAppConfig(data []byte) (*types.AppConfig, error) {
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &appConfig, nil
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *logconfig.LogOptions {
	return logconfig.New(p.appConfig.Log).GetOptions()
}

// GetEvent 获取事件配置
func (p *Provider) GetEvent() *eventconfig.EventOptions {
	return eventconfig.New(p.appConfig.Event).GetOptions()
}

// GetBadger 获取 BadgerDB 配置
//
// 未配置 storage.data_root 时回退到 {data_dir}/badger。
func (p *Provider) GetBadger() *badgerconfig.BadgerOptions {
	storage := p.appConfig.Storage
	if (storage == nil || storage.DataRoot == nil) && p.appConfig.DataDir != nil {
		merged := types.UserStorageConfig{DataRoot: p.appConfig.DataDir}
		if storage != nil {
			merged.InMemory = storage.InMemory
		}
		storage = &merged
	}
	return badgerconfig.New(storage).GetOptions()
}

// GetMemory 获取内存缓存配置
func (p *Provider) GetMemory() *memoryconfig.MemoryOptions {
	return memoryconfig.New(nil).GetOptions()
}

// GetClock 获取时钟配置
func (p *Provider) GetClock() *clockconfig.ClockOptions {
	return clockconfig.New(p.appConfig.Clock).GetOptions()
}

// GetSimulator 获取模拟器配置
func (p *Provider) GetSimulator() *simulatorconfig.SimulatorOptions {
	return simulatorconfig.New(p.appConfig.Simulator).GetOptions()
}

// GetGenesis 获取创世配置
func (p *Provider) GetGenesis() *genesisconfig.Config {
	return genesisconfig.New(p.appConfig.Genesis)
}

// GetNode 获取节点配置
func (p *Provider) GetNode() *nodeconfig.NodeOptions {
	return nodeconfig.New(p.appConfig.Node).GetOptions()
}

// GetAppConfig 获取原始应用配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}
