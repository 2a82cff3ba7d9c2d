package memory

import "time"

// 内存缓存默认配置
const (
	defaultMaxEntries = 1024

	// defaultMaxEntrySize 只决定初始分配，超出的条目由 BigCache 自动扩容
	defaultMaxEntrySize = 1024

	defaultShards = 64
)

var (
	defaultLifeWindow      = time.Hour
	defaultCleanupInterval = 5 * time.Minute
)
