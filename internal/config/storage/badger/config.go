package badger

import (
	"path/filepath"

	configtypes "github.com/weisyn/finality/pkg/types"
)

// BadgerOptions BadgerDB存储配置选项
type BadgerOptions struct {
	// === 基础配置 ===
	Path       string `json:"path"`        // 数据库存储路径
	InMemory   bool   `json:"in_memory"`   // 内存模式，不落盘
	SyncWrites bool   `json:"sync_writes"` // 是否同步写入

	// === 性能配置 ===
	MemTableSize   int64 `json:"mem_table_size"`
	BlockCacheSize int64 `json:"block_cache_size"`
	IndexCacheSize int64 `json:"index_cache_size"`
}

// Config BadgerDB配置实现
type Config struct {
	options *BadgerOptions
}

// New 创建BadgerDB配置，userConfig 为 *types.UserStorageConfig 或 nil
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultBadgerOptions()
	if userConfig != nil {
		applyUserConfig(defaultOptions, userConfig)
	}
	return &Config{options: defaultOptions}
}

// NewFromOptions 从BadgerOptions创建配置实现
func NewFromOptions(options *BadgerOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// NewInMemory 内存模式配置，测试与 simulate 命令使用
func NewInMemory() *Config {
	options := createDefaultBadgerOptions()
	options.InMemory = true
	options.Path = ""
	options.MemTableSize = inMemoryTableSize
	options.BlockCacheSize = inMemoryCacheSize
	options.IndexCacheSize = inMemoryCacheSize
	return &Config{options: options}
}

func createDefaultBadgerOptions() *BadgerOptions {
	return &BadgerOptions{
		Path:           defaultPath,
		InMemory:       defaultInMemory,
		SyncWrites:     defaultSyncWrites,
		MemTableSize:   defaultMemTableSize,
		BlockCacheSize: defaultBlockCacheSize,
		IndexCacheSize: defaultIndexCacheSize,
	}
}

// applyUserConfig 路径规则：{data_root}/badger
func applyUserConfig(options *BadgerOptions, userConfig interface{}) {
	storageConfig, ok := userConfig.(*configtypes.UserStorageConfig)
	if !ok || storageConfig == nil {
		return
	}
	if storageConfig.DataRoot != nil {
		options.Path = filepath.Join(*storageConfig.DataRoot, "badger")
	}
	if storageConfig.InMemory != nil {
		options.InMemory = *storageConfig.InMemory
	}
}

// GetOptions 获取完整的BadgerDB配置选项
func (c *Config) GetOptions() *BadgerOptions {
	return c.options
}

func (c *Config) GetPath() string {
	return c.options.Path
}

func (c *Config) IsInMemory() bool {
	return c.options.InMemory
}

func (c *Config) IsSyncWritesEnabled() bool {
	return c.options.SyncWrites
}

func (c *Config) GetMemTableSize() int64 {
	return c.options.MemTableSize
}

func (c *Config) GetBlockCacheSize() int64 {
	return c.options.BlockCacheSize
}

func (c *Config) GetIndexCacheSize() int64 {
	return c.options.IndexCacheSize
}
