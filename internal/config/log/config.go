package log

import (
	configtypes "github.com/weisyn/finality/pkg/types"
	"go.uber.org/zap/zapcore"
)

// LogOptions 日志配置选项
type LogOptions struct {
	// === 基础配置 ===
	Level     string `json:"level"`      // 日志级别 (debug, info, warn, error, fatal)
	ToConsole bool   `json:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path"`  // 日志文件路径，空表示不写文件

	// === 轮转配置 ===
	MaxSize    int  `json:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int  `json:"max_backups"` // 最大备份文件数
	MaxAge     int  `json:"max_age"`     // 日志文件最大保留天数
	Compress   bool `json:"compress"`    // 是否压缩历史日志文件

	// === 调试配置 ===
	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`

	LevelMap map[string]zapcore.Level `json:"-"`
}

// Config 日志配置实现
type Config struct {
	options *LogOptions
}

// New 创建日志配置，userConfig 为 *types.UserLogConfig 或 nil
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultLogOptions()
	if userConfig != nil {
		applyUserLogConfig(defaultOptions, userConfig)
	}
	return &Config{options: defaultOptions}
}

// NewFromOptions 直接包装已有选项
func NewFromOptions(options *LogOptions) *Config {
	if options == nil {
		return New(nil)
	}
	if options.LevelMap == nil {
		options.LevelMap = defaultLevelMap
	}
	return &Config{options: options}
}

func createDefaultLogOptions() *LogOptions {
	return &LogOptions{
		Level:     defaultLogLevel,
		ToConsole: defaultToConsole,
		FilePath:  defaultFilePath,

		MaxSize:    defaultMaxSize,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAge,
		Compress:   defaultCompress,

		EnableCaller:     defaultEnableCaller,
		EnableStacktrace: defaultEnableStacktrace,

		LevelMap: defaultLevelMap,
	}
}

// applyUserLogConfig 只覆盖配置文件中实际出现的字段
func applyUserLogConfig(options *LogOptions, userConfig interface{}) {
	logConfig, ok := userConfig.(*configtypes.UserLogConfig)
	if !ok || logConfig == nil {
		return
	}
	if logConfig.Level != nil {
		options.Level = *logConfig.Level
	}
	if logConfig.FilePath != nil {
		options.FilePath = *logConfig.FilePath
		// 指定文件路径时默认不输出到控制台
		options.ToConsole = false
	}
	if logConfig.ToConsole != nil {
		options.ToConsole = *logConfig.ToConsole
	}
}

// GetOptions 获取完整的日志配置选项
func (c *Config) GetOptions() *LogOptions {
	return c.options
}

func (c *Config) GetLevel() string {
	return c.options.Level
}

// GetZapLevel 未知级别回退到 info
func (c *Config) GetZapLevel() zapcore.Level {
	if level, exists := c.options.LevelMap[c.options.Level]; exists {
		return level
	}
	return zapcore.InfoLevel
}

func (c *Config) IsConsoleEnabled() bool {
	return c.options.ToConsole
}

func (c *Config) GetFilePath() string {
	return c.options.FilePath
}

func (c *Config) GetMaxSize() int {
	return c.options.MaxSize
}

func (c *Config) GetMaxBackups() int {
	return c.options.MaxBackups
}

func (c *Config) GetMaxAge() int {
	return c.options.MaxAge
}

func (c *Config) IsCompressionEnabled() bool {
	return c.options.Compress
}

func (c *Config) IsCallerEnabled() bool {
	return c.options.EnableCaller
}

func (c *Config) IsStacktraceEnabled() bool {
	return c.options.EnableStacktrace
}

// CreateFileEncoder 文件使用 JSON 编码
func (c *Config) CreateFileEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
	})
}

// CreateConsoleEncoder 控制台使用带颜色的文本编码
func (c *Config) CreateConsoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	})
}
