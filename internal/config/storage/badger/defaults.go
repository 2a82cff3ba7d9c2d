package badger

// BadgerDB 默认配置
const (
	defaultPath     = "./data/badger"
	defaultInMemory = false

	// defaultSyncWrites 区块提交必须落盘后才返回
	defaultSyncWrites = true

	defaultMemTableSize   = 64 << 20
	defaultBlockCacheSize = 64 << 20
	defaultIndexCacheSize = 32 << 20
)

// 内存模式只承载一次运行的数据
const (
	inMemoryTableSize = 8 << 20
	inMemoryCacheSize = 8 << 20
)
