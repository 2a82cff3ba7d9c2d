package event

// 事件系统默认配置
const (
	defaultEnabled = true

	// defaultMaxSubscribers 0 表示不限制
	defaultMaxSubscribers = 0

	defaultBacklogWarnThreshold = 1024
)
