// Package log 定义日志记录器接口
//
// 所有模块通过该接口记录日志，实现位于 internal/core/infrastructure/log，
// 基于 zap。模块内部应使用带 module 字段的子记录器。
package log

import "go.uber.org/zap"

// 日志级别
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
	FatalLevel = "fatal"
)

// Logger 定义日志记录器接口
type Logger interface {
	Debug(msg string)
	Debugf(format string, args ...interface{})

	Info(msg string)
	Infof(format string, args ...interface{})

	Warn(msg string)
	Warnf(format string, args ...interface{})

	Error(msg string)
	Errorf(format string, args ...interface{})

	// Fatal 记录后退出进程
	Fatal(msg string)
	Fatalf(format string, args ...interface{})

	// With 返回带有额外键值字段的 Logger，参数按 key1, value1, ... 成对提供
	With(args ...interface{}) Logger

	// Sync 同步日志缓冲区到输出
	Sync() error

	// GetZapLogger 获取底层 zap 日志记录器
	GetZapLogger() *zap.Logger
}
