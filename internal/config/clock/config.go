package clock

import (
	"os"
	"strconv"
	"time"

	configtypes "github.com/weisyn/finality/pkg/types"
)

// 时钟类型
const (
	TypeSystem        = "system"
	TypeNTP           = "ntp"
	TypeDeterministic = "deterministic"
)

// ClockOptions 时钟配置
type ClockOptions struct {
	Type         string        `json:"type"` // system | ntp | deterministic
	NTPServer    string        `json:"ntp_server"`
	SyncInterval time.Duration `json:"sync_interval"`

	BackoffInitial time.Duration `json:"backoff_initial"`
	BackoffMax     time.Duration `json:"backoff_max"`

	// DeterministicBaseUnix 确定性时钟的基准时间（秒）
	DeterministicBaseUnix int64 `json:"deterministic_base_unix"`
}

// Config 时钟配置实现
type Config struct {
	options *ClockOptions
}

// New 创建时钟配置
//
// 优先级：用户配置 > 环境变量 > 默认值。环境变量：
//
//	CLOCK_TYPE (system|ntp|deterministic)
//	CLOCK_NTP_SERVER
//	CLOCK_SYNC_INTERVAL_MS
//	CLOCK_DETERMINISTIC_BASE_UNIX
func New(userConfig interface{}) *Config {
	opts := &ClockOptions{
		Type:           defaultType,
		NTPServer:      defaultNTPServer,
		SyncInterval:   defaultSyncInterval,
		BackoffInitial: defaultBackoffInitial,
		BackoffMax:     defaultBackoffMax,
	}

	if v := os.Getenv("CLOCK_TYPE"); v != "" {
		opts.Type = v
	}
	if v := os.Getenv("CLOCK_NTP_SERVER"); v != "" {
		opts.NTPServer = v
	}
	if v := os.Getenv("CLOCK_SYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.SyncInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("CLOCK_DETERMINISTIC_BASE_UNIX"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.DeterministicBaseUnix = n
		}
	}

	if cfg, ok := userConfig.(*configtypes.UserClockConfig); ok && cfg != nil {
		if cfg.Type != nil {
			opts.Type = *cfg.Type
		}
		if cfg.NTPServer != nil {
			opts.NTPServer = *cfg.NTPServer
		}
	}

	return &Config{options: opts}
}

func (c *Config) GetOptions() *ClockOptions { return c.options }
