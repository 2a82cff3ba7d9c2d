package storage

import (
	"context"
	"time"
)

// MemoryStore 进程内缓存
type MemoryStore interface {
	Get(ctx context.Context, key string) (value []byte, exists bool, err error)

	// Set 写入缓存，ttl 为 0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	Clear(ctx context.Context) error

	Count(ctx context.Context) (int64, error)

	Close() error
}
