package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/weisyn/finality/internal/core/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/finality/pkg/types"
)

var (
	_ ledgerintf.TemporaryFactory = (*SnapshotFactory)(nil)
	_ ledgerintf.TemporaryLedger  = (*Snapshot)(nil)
)

// SnapshotFactory 基于 BadgerDB 事务的临时账本工厂
//
// 每个快照是一个从不提交的读写事务：读取看到创建时刻的已提交状态，
// 写入只对该快照可见，Release 时整体丢弃。
type SnapshotFactory struct {
	store  storage.BadgerStore
	logger logintf.Logger
}

// NewSnapshotFactory 创建快照工厂
func NewSnapshotFactory(store storage.BadgerStore, logger logintf.Logger) *SnapshotFactory {
	return &SnapshotFactory{store: store, logger: log.NewModuleLogger(logger, "ledger")}
}

// CreateSnapshot 创建临时快照，调用方负责 Release
func (f *SnapshotFactory) CreateSnapshot(ctx context.Context) (ledgerintf.TemporaryLedger, error) {
	tx, err := f.store.BeginTransaction(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("开启快照事务失败: %w", err)
	}
	return &Snapshot{tx: tx}, nil
}

// Snapshot 临时账本快照
//
// 快照归单个轮次所有，内部加锁只为让 Release 与进行中的读取安全交错。
type Snapshot struct {
	mu       sync.Mutex
	tx       storage.ManagedTransaction
	released bool
}

// GetAccountCounter 读取账户交易计数
func (s *Snapshot) GetAccountCounter(ctx context.Context, accountID string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, false, err
	}
	raw, err := s.tx.Get(accountCounterKey(accountID))
	if err != nil {
		return 0, false, fmt.Errorf("读取账户计数失败: %w", err)
	}
	if raw == nil {
		return 0, false, nil
	}
	counter, err := decodeUint64(raw)
	if err != nil {
		return 0, false, err
	}
	return counter, true, nil
}

// SetAccountCounter 写入账户交易计数（仅快照内可见）
func (s *Snapshot) SetAccountCounter(ctx context.Context, accountID string, counter uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.tx.Set(accountCounterKey(accountID), encodeUint64(counter))
}

// HasPeer 节点是否已注册
func (s *Snapshot) HasPeer(ctx context.Context, key types.PublicKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}
	return s.tx.Exists(peerKey(key))
}

// AddPeer 注册节点（仅快照内可见）
func (s *Snapshot) AddPeer(ctx context.Context, peer types.AddPeer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}
	value, err := encodePeer(peer)
	if err != nil {
		return err
	}
	return s.tx.Set(peerKey(peer.PeerKey), value)
}

// Release 丢弃快照，可重复调用
func (s *Snapshot) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.tx.Discard()
}

// Released 快照是否已释放
func (s *Snapshot) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

func (s *Snapshot) check(ctx context.Context) error {
	if s.released {
		return types.ErrSnapshotReleased
	}
	return ctx.Err()
}
