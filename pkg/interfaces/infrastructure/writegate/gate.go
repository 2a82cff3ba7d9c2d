// Package writegate 定义账本写门闸接口
//
// 账本在出现不可恢复的存储错误后进入只读，所有写入在人工确认前被拒绝。
package writegate

import (
	"context"
	"errors"
)

// ErrWriteBlocked 写入被门闸拒绝
var ErrWriteBlocked = errors.New("write blocked")

// WriteGate 写门闸
type WriteGate interface {
	// EnterReadOnly 进入只读模式，reason 用于日志与错误消息
	EnterReadOnly(reason string)

	// ExitReadOnly 退出只读模式
	ExitReadOnly()

	// IsReadOnly 是否处于只读模式
	IsReadOnly() bool

	// ReadOnlyReason 只读原因，非只读时为空
	ReadOnlyReason() string

	// AssertWriteAllowed 校验写操作是否允许
	//
	// 返回:
	//   - error: 只读时包装 ErrWriteBlocked，ctx 已结束时返回 ctx.Err()
	AssertWriteAllowed(ctx context.Context, op string) error
}
