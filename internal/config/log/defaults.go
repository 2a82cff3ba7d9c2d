package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	defaultLogLevel  = "info"
	defaultToConsole = true

	// defaultFilePath 为空时只输出到控制台
	defaultFilePath = ""

	// defaultMaxSize 单个日志文件最大 100MB
	defaultMaxSize    = 100
	defaultMaxBackups = 10
	defaultMaxAge     = 30
	defaultCompress   = true

	defaultEnableCaller = true
	// defaultEnableStacktrace 仅 Error 级别附带堆栈
	defaultEnableStacktrace = true
)

var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
