// Package node 节点身份配置
package node

import configtypes "github.com/weisyn/finality/pkg/types"

// defaultKeySeed 仅用于本地演示，生产节点必须显式配置
const defaultKeySeed = "42"

// NodeOptions 节点配置选项
type NodeOptions struct {
	// KeySeed 派生节点 Ed25519 签名密钥的种子
	KeySeed string `json:"key_seed"`
}

// Config 节点配置实现
type Config struct {
	options *NodeOptions
}

// New 创建节点配置，userConfig 为 *types.UserNodeConfig 或 nil
func New(userConfig interface{}) *Config {
	opts := &NodeOptions{KeySeed: defaultKeySeed}
	if cfg, ok := userConfig.(*configtypes.UserNodeConfig); ok && cfg != nil && cfg.KeySeed != nil {
		opts.KeySeed = *cfg.KeySeed
	}
	return &Config{options: opts}
}

func (c *Config) GetOptions() *NodeOptions { return c.options }

func (c *Config) GetKeySeed() string { return c.options.KeySeed }
