// Package log 提供了一个通用的日志接口和基于zap的实现
// 它支持不同级别的日志记录、结构化日志、日志旋转等功能
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	logconfig "github.com/weisyn/finality/internal/config/log"
	logInterface "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// 全局日志实例
	globalLogger logInterface.Logger
	mu           sync.RWMutex
)

// Logger 实现 log.Logger 接口
type Logger struct {
	zapLogger *zap.Logger
	sugar     *zap.SugaredLogger
}

var _ logInterface.Logger = (*Logger)(nil)

func init() {
	ResetDefault()
}

// ResetDefault 重置全局日志记录器为默认配置
func ResetDefault() {
	logger, err := New(logconfig.New(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize default logger: %v\n", err)
		return
	}
	SetLogger(logger)
}

// createFileWriter 创建带轮转的文件写入器
func createFileWriter(logPath string, config *logconfig.Config) zapcore.WriteSyncer {
	logDir := filepath.Dir(logPath)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "创建日志目录失败 %s: %v\n", logDir, err)
		return zapcore.AddSync(os.Stderr)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    config.GetMaxSize(), // megabytes
		MaxBackups: config.GetMaxBackups(),
		MaxAge:     config.GetMaxAge(), // days
		Compress:   config.IsCompressionEnabled(),
	})
}

// New 根据配置创建新的日志记录器
//
// FilePath 为 stdout/stderr 时只输出到对应控制台；为普通路径时写入轮转文件，
// ToConsole 为 true 时同时输出到标准输出。
func New(config *logconfig.Config) (logInterface.Logger, error) {
	level := zap.NewAtomicLevelAt(config.GetZapLevel())
	outputPath := config.GetFilePath()

	var cores []zapcore.Core

	switch {
	case outputPath == "stderr":
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), zapcore.AddSync(os.Stderr), level))
	case outputPath == "stdout" || config.IsConsoleEnabled():
		cores = append(cores, zapcore.NewCore(config.CreateConsoleEncoder(), zapcore.AddSync(os.Stdout), level))
	}

	if outputPath != "" && outputPath != "stdout" && outputPath != "stderr" {
		absPath, err := filepath.Abs(outputPath)
		if err != nil {
			return nil, fmt.Errorf("获取日志文件绝对路径失败: %w", err)
		}
		cores = append(cores, zapcore.NewCore(config.CreateFileEncoder(), createFileWriter(absPath, config), level))
	}

	core := zapcore.NewTee(cores...)

	zapOptions := []zap.Option{}
	if config.IsCallerEnabled() {
		// 跳过一层封装，调用位置指向业务代码
		zapOptions = append(zapOptions, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if config.IsStacktraceEnabled() {
		zapOptions = append(zapOptions, zap.AddStacktrace(zapcore.ErrorLevel))
	}

	zapLogger := zap.New(core, zapOptions...)
	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}, nil
}

// NewFromZap 包装已有的 zap logger
func NewFromZap(zapLogger *zap.Logger) logInterface.Logger {
	if zapLogger == nil {
		return NewNopLogger()
	}
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}
}

// NewNopLogger 丢弃所有输出，用于测试与未注入 logger 的场景
func NewNopLogger() logInterface.Logger {
	zapLogger := zap.NewNop()
	return &Logger{zapLogger: zapLogger, sugar: zapLogger.Sugar()}
}

// GetZapLogger 获取底层的zap日志记录器
func (l *Logger) GetZapLogger() *zap.Logger {
	return l.zapLogger
}

// SetLogger 设置全局日志记录器
func SetLogger(logger logInterface.Logger) {
	if logger == nil {
		return
	}
	mu.Lock()
	globalLogger = logger
	mu.Unlock()
}

// GetLogger 获取全局日志记录器
func GetLogger() logInterface.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Info 使用全局记录器记录信息级别日志
func Info(msg string) {
	if l := GetLogger(); l != nil {
		l.Info(msg)
	}
}

// Infof 使用全局记录器记录格式化信息
func Infof(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Infof(format, args...)
	}
}

// Warnf 使用全局记录器记录格式化警告
func Warnf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Warnf(format, args...)
	}
}

// Errorf 使用全局记录器记录格式化错误
func Errorf(format string, args ...interface{}) {
	if l := GetLogger(); l != nil {
		l.Errorf(format, args...)
	}
}

// With 基于全局记录器创建带字段的记录器
func With(args ...interface{}) logInterface.Logger {
	l := GetLogger()
	if l == nil {
		ResetDefault()
		l = GetLogger()
	}
	return l.With(args...)
}

// toZapFields 将 key1, value1, ... 转换为 zap 字段，奇数个参数时丢弃最后一个
func toZapFields(args ...interface{}) []zap.Field {
	if len(args)%2 != 0 {
		args = args[:len(args)-1]
	}

	fields := make([]zap.Field, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}

func (l *Logger) Debug(msg string) { l.sugar.Debug(msg) }

func (l *Logger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }

func (l *Logger) Info(msg string) { l.sugar.Info(msg) }

func (l *Logger) Infof(format string, args ...interface{}) { l.sugar.Infof(format, args...) }

func (l *Logger) Warn(msg string) { l.sugar.Warn(msg) }

func (l *Logger) Warnf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }

func (l *Logger) Error(msg string) { l.sugar.Error(msg) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Fatal 记录致命级别的日志，然后退出程序
func (l *Logger) Fatal(msg string) { l.sugar.Fatal(msg) }

// Fatalf 使用格式化字符串记录致命级别的日志，然后退出程序
func (l *Logger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// With 返回一个带有额外字段的Logger
func (l *Logger) With(args ...interface{}) logInterface.Logger {
	zapLogger := l.zapLogger.With(toZapFields(args...)...)
	return &Logger{
		zapLogger: zapLogger,
		sugar:     zapLogger.Sugar(),
	}
}

// Sync 同步日志缓冲区到输出
func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}
