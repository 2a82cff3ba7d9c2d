package memory

import "time"

// MemoryOptions 内存缓存配置选项
type MemoryOptions struct {
	// === 基础配置 ===
	MaxEntries   int           `json:"max_entries"`    // 生命周期窗口内的最大条目数
	MaxEntrySize int           `json:"max_entry_size"` // 单条目最大字节数（预分配用）
	LifeWindow   time.Duration `json:"life_window"`    // 条目存活时间
	Shards       int           `json:"shards"`         // 分片数，必须为 2 的幂

	// === 清理配置 ===
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// Config 内存缓存配置实现
type Config struct {
	options *MemoryOptions
}

// New 创建内存缓存配置
func New(userConfig interface{}) *Config {
	return &Config{options: createDefaultMemoryOptions()}
}

// NewFromOptions 直接包装已有选项
func NewFromOptions(options *MemoryOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

func createDefaultMemoryOptions() *MemoryOptions {
	return &MemoryOptions{
		MaxEntries:      defaultMaxEntries,
		MaxEntrySize:    defaultMaxEntrySize,
		LifeWindow:      defaultLifeWindow,
		Shards:          defaultShards,
		CleanupInterval: defaultCleanupInterval,
	}
}

// GetOptions 获取完整的内存缓存配置选项
func (c *Config) GetOptions() *MemoryOptions {
	return c.options
}

func (c *Config) GetMaxEntries() int {
	return c.options.MaxEntries
}

func (c *Config) GetMaxEntrySize() int {
	return c.options.MaxEntrySize
}

func (c *Config) GetLifeWindow() time.Duration {
	return c.options.LifeWindow
}

func (c *Config) GetShards() int {
	return c.options.Shards
}

func (c *Config) GetCleanupInterval() time.Duration {
	return c.options.CleanupInterval
}
