// Package simulator 模拟器配置
package simulator

import (
	"time"

	configtypes "github.com/weisyn/finality/pkg/types"
)

// SimulatorOptions 模拟器配置选项
type SimulatorOptions struct {
	// ValidationTimeout 单轮有状态验证的超时，超时视为轮次失败
	ValidationTimeout time.Duration `json:"validation_timeout"`

	// BlockQueryTimeout 读取上一区块的超时
	BlockQueryTimeout time.Duration `json:"block_query_timeout"`

	// MaxCommitLag 缓存区块最多领先存储链顶的高度数
	MaxCommitLag uint64 `json:"max_commit_lag"`
}

// Config 模拟器配置实现
type Config struct {
	options *SimulatorOptions
}

// New 创建模拟器配置，userConfig 为 *types.UserSimulatorConfig 或 nil
func New(userConfig interface{}) *Config {
	opts := &SimulatorOptions{
		ValidationTimeout: defaultValidationTimeout,
		BlockQueryTimeout: defaultBlockQueryTimeout,
		MaxCommitLag:      defaultMaxCommitLag,
	}
	if cfg, ok := userConfig.(*configtypes.UserSimulatorConfig); ok && cfg != nil {
		if cfg.ValidationTimeoutMs != nil && *cfg.ValidationTimeoutMs > 0 {
			opts.ValidationTimeout = time.Duration(*cfg.ValidationTimeoutMs) * time.Millisecond
		}
		if cfg.BlockQueryTimeoutMs != nil && *cfg.BlockQueryTimeoutMs > 0 {
			opts.BlockQueryTimeout = time.Duration(*cfg.BlockQueryTimeoutMs) * time.Millisecond
		}
		if cfg.MaxCommitLag != nil && *cfg.MaxCommitLag > 0 {
			opts.MaxCommitLag = *cfg.MaxCommitLag
		}
	}
	return &Config{options: opts}
}

// NewFromOptions 直接包装已有选项
func NewFromOptions(options *SimulatorOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func (c *Config) GetOptions() *SimulatorOptions { return c.options }

func (c *Config) GetValidationTimeout() time.Duration { return c.options.ValidationTimeout }

func (c *Config) GetBlockQueryTimeout() time.Duration { return c.options.BlockQueryTimeout }

func (c *Config) GetMaxCommitLag() uint64 { return c.options.MaxCommitLag }
