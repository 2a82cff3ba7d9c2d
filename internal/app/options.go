package app

import (
	"github.com/weisyn/finality/pkg/interfaces/config"
	"github.com/weisyn/finality/pkg/types"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项，实现 config.AppOptions
type options struct {
	// 配置文件路径，为空时使用默认配置
	configFilePath string

	// 用户配置，文件加载后再应用覆盖项
	appConfig *types.AppConfig

	overrides []func(*types.AppConfig)
}

var _ config.AppOptions = (*options)(nil)

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithAppConfig 直接使用给定配置，忽略配置文件
func WithAppConfig(appConfig *types.AppConfig) Option {
	return func(o *options) {
		o.appConfig = appConfig
		o.configFilePath = ""
	}
}

// WithInMemoryStorage 使用内存 BadgerDB
func WithInMemoryStorage() Option {
	return withOverride(func(c *types.AppConfig) {
		if c.Storage == nil {
			c.Storage = &types.UserStorageConfig{}
		}
		c.Storage.InMemory = types.BoolPtr(true)
	})
}

// WithGenesisPeers 覆盖创世节点列表
func WithGenesisPeers(peers []string) Option {
	return withOverride(func(c *types.AppConfig) {
		if c.Genesis == nil {
			c.Genesis = &types.UserGenesisConfig{}
		}
		c.Genesis.Peers = append([]string(nil), peers...)
		c.Genesis.PeersFile = nil
	})
}

// WithNodeKeySeed 覆盖节点签名密钥种子
func WithNodeKeySeed(seed string) Option {
	return withOverride(func(c *types.AppConfig) {
		c.Node = &types.UserNodeConfig{KeySeed: types.StringPtr(seed)}
	})
}

// WithLogLevel 覆盖日志级别
func WithLogLevel(level string) Option {
	return withOverride(func(c *types.AppConfig) {
		if c.Log == nil {
			c.Log = &types.UserLogConfig{}
		}
		c.Log.Level = types.StringPtr(level)
	})
}

func withOverride(fn func(*types.AppConfig)) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, fn)
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetAppConfig 返回应用配置
func (o *options) GetAppConfig() *types.AppConfig {
	return o.appConfig
}
