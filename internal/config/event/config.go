package event

import configtypes "github.com/weisyn/finality/pkg/types"

// EventOptions 事件系统配置选项
type EventOptions struct {
	Enabled bool `json:"enabled"` // 是否启用事件系统

	// MaxSubscribers 单个主题允许的最大订阅者数量，0 表示不限制
	MaxSubscribers int `json:"max_subscribers"`

	// BacklogWarnThreshold 订阅者积压超过该值时记录告警
	BacklogWarnThreshold int `json:"backlog_warn_threshold"`
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置，userConfig 为 *types.UserEventConfig 或 nil
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultEventOptions()
	if cfg, ok := userConfig.(*configtypes.UserEventConfig); ok && cfg != nil {
		if cfg.Enabled != nil {
			defaultOptions.Enabled = *cfg.Enabled
		}
	}
	return &Config{options: defaultOptions}
}

// NewFromOptions 直接包装已有选项
func NewFromOptions(options *EventOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func createDefaultEventOptions() *EventOptions {
	return &EventOptions{
		Enabled:              defaultEnabled,
		MaxSubscribers:       defaultMaxSubscribers,
		BacklogWarnThreshold: defaultBacklogWarnThreshold,
	}
}

// GetOptions 获取完整的事件配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用事件系统
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

func (c *Config) GetMaxSubscribers() int {
	return c.options.MaxSubscribers
}

func (c *Config) GetBacklogWarnThreshold() int {
	return c.options.BacklogWarnThreshold
}
