package types

// AppConfig 应用配置文件结构
//
// 指针字段区分"未设置"与"显式设置为零值"：nil 使用系统默认值。
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"`
	DataDir *string `json:"data_dir,omitempty"`

	Log       *UserLogConfig       `json:"log,omitempty"`
	Event     *UserEventConfig     `json:"event,omitempty"`
	Storage   *UserStorageConfig   `json:"storage,omitempty"`
	Clock     *UserClockConfig     `json:"clock,omitempty"`
	Simulator *UserSimulatorConfig `json:"simulator,omitempty"`
	Genesis   *UserGenesisConfig   `json:"genesis,omitempty"`
	Node      *UserNodeConfig      `json:"node,omitempty"`
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level     *string `json:"level,omitempty"`      // debug, info, warn, error, fatal
	FilePath  *string `json:"file_path,omitempty"`  // 日志文件路径，stdout/stderr 表示控制台
	ToConsole *bool   `json:"to_console,omitempty"` // 是否输出到控制台
}

// UserEventConfig 用户事件配置
type UserEventConfig struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// UserStorageConfig 用户存储配置
type UserStorageConfig struct {
	DataRoot *string `json:"data_root,omitempty"` // 数据根目录，badger 位于 {data_root}/badger
	InMemory *bool   `json:"in_memory,omitempty"` // 使用内存 badger，进程退出后数据丢失
}

// UserClockConfig 用户时钟配置
type UserClockConfig struct {
	Type      *string `json:"type,omitempty"` // system | ntp | deterministic
	NTPServer *string `json:"ntp_server,omitempty"`
}

// UserSimulatorConfig 用户模拟器配置
type UserSimulatorConfig struct {
	ValidationTimeoutMs *int64  `json:"validation_timeout_ms,omitempty"`
	BlockQueryTimeoutMs *int64  `json:"block_query_timeout_ms,omitempty"`
	MaxCommitLag        *uint64 `json:"max_commit_lag,omitempty"` // 缓存区块最多领先存储的高度数
}

// UserGenesisConfig 用户创世配置
type UserGenesisConfig struct {
	Peers     []string `json:"peers,omitempty"`      // 节点地址列表
	PeersFile *string  `json:"peers_file,omitempty"` // 节点地址文件，空白分隔
}

// UserNodeConfig 用户节点配置
type UserNodeConfig struct {
	KeySeed *string `json:"key_seed,omitempty"` // 节点签名密钥种子
}

// StringPtr 便捷构造
func StringPtr(s string) *string { return &s }

// BoolPtr 便捷构造
func BoolPtr(b bool) *bool { return &b }

// Int64Ptr 便捷构造
func Int64Ptr(v int64) *int64 { return &v }

// Uint64Ptr 便捷构造
func Uint64Ptr(v uint64) *uint64 { return &v }
