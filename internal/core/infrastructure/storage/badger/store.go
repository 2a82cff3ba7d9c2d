// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"

	badgerconfig "github.com/weisyn/finality/internal/config/storage/badger"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
)

// 确保 Store 实现了 interfaces.BadgerStore 接口
var _ interfaces.BadgerStore = (*Store)(nil)

// ErrStoreClosing 存储正在关闭，拒绝新的写入
var ErrStoreClosing = errors.New("badger store is closing")

// closeWaitTimeout 关闭时等待进行中写入的上限
const closeWaitTimeout = 30 * time.Second

// Store 实现BadgerStore接口
type Store struct {
	db     *badgerdb.DB
	config *badgerconfig.Config
	logger logintf.Logger

	// 关闭过程中拒绝写入，避免 Close 与写入并发
	closing int32
	writeWg sync.WaitGroup
}

// New 创建新的BadgerStore实例
//
// 参数:
//   - config: 存储配置，IsInMemory 为 true 时不落盘
//   - logger: 日志记录器，可为 nil
//
// 返回:
//   - *Store: 已打开的存储
//   - error: 目录创建或数据库打开失败
func New(config *badgerconfig.Config, logger logintf.Logger) (*Store, error) {
	if config == nil {
		config = badgerconfig.New(nil)
	}
	logger = log.NewModuleLogger(logger, "badger")

	var opts badgerdb.Options
	if config.IsInMemory() {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
		logger.Info("初始化内存BadgerDB存储")
	} else {
		dataDir := config.GetPath()
		if dataDir == "" {
			return nil, fmt.Errorf("BadgerDB数据目录未配置")
		}
		if err := os.MkdirAll(dataDir, 0700); err != nil {
			return nil, fmt.Errorf("无法创建BadgerDB数据目录: %w", err)
		}
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = config.IsSyncWritesEnabled()
		logger.Infof("初始化BadgerDB存储，数据目录: %s", dataDir)
	}

	opts.MemTableSize = config.GetMemTableSize()
	opts.BlockCacheSize = config.GetBlockCacheSize()
	opts.IndexCacheSize = config.GetIndexCacheSize()
	opts.NumMemtables = 2
	opts.NumCompactors = 2
	opts.Logger = newBadgerLogger(logger)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}

	return &Store{db: db, config: config, logger: logger}, nil
}

// Close 关闭存储并释放资源
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil
	}

	waitCh := make(chan struct{})
	go func() {
		s.writeWg.Wait()
		close(waitCh)
	}()
	select {
	case <-waitCh:
	case <-time.After(closeWaitTimeout):
		s.logger.Warnf("等待进行中写事务超时（%s），继续关闭BadgerDB", closeWaitTimeout)
	}

	if err := s.db.Close(); err != nil {
		s.logger.Errorf("关闭BadgerDB失败: %v", err)
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}
	s.logger.Info("BadgerDB存储已关闭")
	return nil
}

func (s *Store) beginWrite() (func(), error) {
	if atomic.LoadInt32(&s.closing) == 1 {
		return nil, ErrStoreClosing
	}
	s.writeWg.Add(1)
	// Add 之后再次检查，避免与 Close 交错
	if atomic.LoadInt32(&s.closing) == 1 {
		s.writeWg.Done()
		return nil, ErrStoreClosing
	}
	return s.writeWg.Done, nil
}

// Get 获取指定键的值
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var valCopy []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badgerdb.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("badger获取键失败: %w", err)
	}
	return valCopy, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete 删除指定键的值
func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done, err := s.beginWrite()
	if err != nil {
		return err
	}
	defer done()
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var exists bool
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		exists = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("badger检查键存在性失败: %w", err)
	}
	return exists, nil
}

// PrefixScan 按前缀扫描键值对
func (s *Store) PrefixScan(ctx context.Context, prefix []byte) (map[string][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result := make(map[string][]byte)
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			valCopy, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = valCopy
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger前缀扫描失败: %w", err)
	}
	return result, nil
}

// RunInTransaction 在事务中执行操作
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx interfaces.BadgerTransaction) error) error {
	tx, err := s.BeginTransaction(ctx, true)
	if err != nil {
		return err
	}
	defer tx.Discard()

	if err := fn(tx); err != nil {
		return fmt.Errorf("事务执行失败: %w", err)
	}
	if !tx.IsActive() {
		return fmt.Errorf("事务已被丢弃")
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// BeginTransaction 开启由调用方管理的事务
//
// 写事务在 Commit 或 Discard 之前会阻止 Close 完成。
func (s *Store) BeginTransaction(ctx context.Context, update bool) (interfaces.ManagedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	release := func() {}
	if update {
		done, err := s.beginWrite()
		if err != nil {
			return nil, err
		}
		release = done
	} else if atomic.LoadInt32(&s.closing) == 1 {
		return nil, ErrStoreClosing
	}
	return newTransaction(s.db.NewTransaction(update), release), nil
}

// badgerLogger 实现BadgerDB的日志接口
type badgerLogger struct {
	logger logintf.Logger
}

func newBadgerLogger(logger logintf.Logger) *badgerLogger {
	return &badgerLogger{logger: logger}
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warnf("[BadgerDB] "+format, args...)
}

// Infof badger 的信息日志量较大，降为 debug
func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf("[BadgerDB] "+format, args...)
}
