// Package memory 提供基于BigCache的内存缓存实现
package memory

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"

	memoryconfig "github.com/weisyn/finality/internal/config/storage/memory"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	storage "github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
)

// 确保Store实现了storage.MemoryStore接口
var _ storage.MemoryStore = (*Store)(nil)

// ErrStoreClosed 缓存已关闭
var ErrStoreClosed = errors.New("内存存储已关闭")

// expiryHeaderSize 值前缀：8 字节过期时间（UnixNano，0 表示不过期）
const expiryHeaderSize = 8

// Store 实现了MemoryStore接口，基于BigCache提供内存缓存功能
//
// BigCache 只有全局生命周期窗口，条目级 TTL 通过值前缀的过期时间实现。
type Store struct {
	cache  *bigcache.BigCache
	logger logintf.Logger
	config *memoryconfig.Config
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
}

// New 创建一个新的BigCache内存存储实例
func New(config *memoryconfig.Config, logger logintf.Logger) (*Store, error) {
	if config == nil {
		config = memoryconfig.New(nil)
	}
	logger = log.NewModuleLogger(logger, "memory")

	bigCacheConfig := bigcache.DefaultConfig(config.GetLifeWindow())
	bigCacheConfig.MaxEntriesInWindow = config.GetMaxEntries()
	bigCacheConfig.MaxEntrySize = config.GetMaxEntrySize()
	bigCacheConfig.Shards = config.GetShards()
	bigCacheConfig.CleanWindow = config.GetCleanupInterval()
	bigCacheConfig.Verbose = false

	cache, err := bigcache.New(context.Background(), bigCacheConfig)
	if err != nil {
		return nil, fmt.Errorf("创建BigCache实例失败: %w", err)
	}

	return &Store{
		cache:  cache,
		logger: logger,
		config: config,
		now:    time.Now,
	}, nil
}

// Close 关闭缓存并释放资源
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Debug("关闭内存存储")
	return s.cache.Close()
}

// Get 获取缓存值，过期条目视为不存在
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrStoreClosed
	}

	raw, err := s.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, false, nil
		}
		s.logger.Warnf("获取缓存键[%s]失败: %v", key, err)
		return nil, false, err
	}

	value, ok := s.decode(raw)
	if !ok {
		_ = s.cache.Delete(key)
		return nil, false, nil
	}
	return value, true, nil
}

// Set 设置缓存值，ttl 为 0 表示仅受生命周期窗口约束
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	entry := make([]byte, expiryHeaderSize+len(value))
	binary.BigEndian.PutUint64(entry, uint64(expiresAt))
	copy(entry[expiryHeaderSize:], value)

	if err := s.cache.Set(key, entry); err != nil {
		s.logger.Warnf("设置缓存键[%s]失败: %v", key, err)
		return err
	}
	return nil
}

// Delete 删除指定键的缓存
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}

	if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		s.logger.Warnf("删除缓存键[%s]失败: %v", key, err)
		return err
	}
	return nil
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, exists, err := s.Get(ctx, key)
	return exists, err
}

// Clear 清空所有缓存
func (s *Store) Clear(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStoreClosed
	}
	return s.cache.Reset()
}

// Count 条目数，包含尚未被清理的过期条目
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return int64(s.cache.Len()), nil
}

func (s *Store) decode(raw []byte) ([]byte, bool) {
	if len(raw) < expiryHeaderSize {
		return nil, false
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw))
	if expiresAt != 0 && s.now().UnixNano() >= expiresAt {
		return nil, false
	}
	value := make([]byte, len(raw)-expiryHeaderSize)
	copy(value, raw[expiryHeaderSize:])
	return value, true
}
