// Package storage 定义键值存储接口
package storage

import (
	"context"
	"time"
)

// BadgerStore 基于 BadgerDB 的持久化键值存储
type BadgerStore interface {
	// Close 关闭数据库，等待进行中的写入完成
	Close() error

	// Get 获取键值，键不存在时返回 nil, nil
	Get(ctx context.Context, key []byte) ([]byte, error)

	Set(ctx context.Context, key, value []byte) error

	// Delete 删除键，键不存在不返回错误
	Delete(ctx context.Context, key []byte) error

	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀扫描，返回 map 的键为键的字符串形式
	PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error)

	// RunInTransaction 在读写事务中执行 fn，fn 返回错误则回滚，否则提交
	RunInTransaction(ctx context.Context, fn func(tx BadgerTransaction) error) error

	// BeginTransaction 开启由调用方管理生命周期的事务
	//
	// 调用方必须在每条路径上调用 Commit 或 Discard。
	BeginTransaction(ctx context.Context, update bool) (ManagedTransaction, error)
}

// BadgerTransaction 事务内的键值操作
type BadgerTransaction interface {
	// Get 获取键值，键不存在时返回 nil, nil
	Get(key []byte) ([]byte, error)

	Set(key, value []byte) error

	SetWithTTL(key, value []byte, ttl time.Duration) error

	Delete(key []byte) error

	Exists(key []byte) (bool, error)

	// Merge 读取现有值并以 mergeFunc 的结果覆盖，键不存在时 existingVal 为 nil
	Merge(key, value []byte, mergeFunc func(existingVal, newVal []byte) []byte) error
}

// ManagedTransaction 调用方管理的事务
type ManagedTransaction interface {
	BadgerTransaction

	Commit() error

	// Discard 丢弃未提交的更改，可重复调用
	Discard()

	IsActive() bool
}
