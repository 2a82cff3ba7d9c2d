package badger

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	badgerdb "github.com/dgraph-io/badger/v3"

	"github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
)

// 确保 Transaction 实现了 storage.ManagedTransaction 接口
var _ storage.ManagedTransaction = (*Transaction)(nil)

// ErrTransactionClosed 事务已提交或丢弃
var ErrTransactionClosed = errors.New("事务已关闭")

// TransactionState 定义事务的状态
type TransactionState int32

const (
	// TxActive 表示事务处于活动状态
	TxActive TransactionState = iota
	// TxCommitted 表示事务已提交
	TxCommitted
	// TxDiscarded 表示事务已丢弃
	TxDiscarded
)

// Transaction 实现ManagedTransaction接口
//
// 不可并发使用，与 badger.Txn 相同。
type Transaction struct {
	txn        *badgerdb.Txn
	state      int32
	operations int
	release    func()
	releaseMu  sync.Once
}

func newTransaction(txn *badgerdb.Txn, release func()) *Transaction {
	return &Transaction{txn: txn, state: int32(TxActive), release: release}
}

// Get 获取指定键的值，键不存在时返回 nil, nil
func (t *Transaction) Get(key []byte) ([]byte, error) {
	if !t.IsActive() {
		return nil, ErrTransactionClosed
	}
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("复制键值失败: %w", err)
	}
	t.operations++
	return val, nil
}

// Set 设置键值对
func (t *Transaction) Set(key, value []byte) error {
	if !t.IsActive() {
		return ErrTransactionClosed
	}
	if err := t.txn.Set(key, value); err != nil {
		return fmt.Errorf("设置键值失败: %w", err)
	}
	t.operations++
	return nil
}

// SetWithTTL 设置键值对并指定过期时间
func (t *Transaction) SetWithTTL(key, value []byte, ttl time.Duration) error {
	if !t.IsActive() {
		return ErrTransactionClosed
	}
	if err := t.txn.SetEntry(badgerdb.NewEntry(key, value).WithTTL(ttl)); err != nil {
		return fmt.Errorf("设置带TTL的键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Delete 删除指定键的值
func (t *Transaction) Delete(key []byte) error {
	if !t.IsActive() {
		return ErrTransactionClosed
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("删除键值失败: %w", err)
	}
	t.operations++
	return nil
}

// Exists 检查键是否存在
func (t *Transaction) Exists(key []byte) (bool, error) {
	if !t.IsActive() {
		return false, ErrTransactionClosed
	}
	_, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("检查键存在性失败: %w", err)
	}
	t.operations++
	return true, nil
}

// Merge 原子性地合并键的现有值与新值
func (t *Transaction) Merge(key, value []byte, mergeFunc func(existingVal, newVal []byte) []byte) error {
	existingVal, err := t.Get(key)
	if err != nil {
		return fmt.Errorf("获取现有值失败: %w", err)
	}
	if err := t.Set(key, mergeFunc(existingVal, value)); err != nil {
		return fmt.Errorf("设置合并值失败: %w", err)
	}
	return nil
}

// Commit 提交事务
func (t *Transaction) Commit() error {
	if !atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxCommitted)) {
		if t.getState() == TxCommitted {
			return fmt.Errorf("事务已提交")
		}
		return fmt.Errorf("事务已丢弃，无法提交")
	}
	defer t.done()

	// 无操作的事务直接丢弃
	if t.operations == 0 {
		t.txn.Discard()
		return nil
	}
	if err := t.txn.Commit(); err != nil {
		atomic.StoreInt32(&t.state, int32(TxDiscarded))
		return fmt.Errorf("事务提交失败: %w", err)
	}
	return nil
}

// Discard 丢弃事务，可重复调用
func (t *Transaction) Discard() {
	if atomic.CompareAndSwapInt32(&t.state, int32(TxActive), int32(TxDiscarded)) {
		t.txn.Discard()
		t.done()
	}
}

func (t *Transaction) done() {
	t.releaseMu.Do(func() {
		if t.release != nil {
			t.release()
		}
	})
}

func (t *Transaction) getState() TransactionState {
	return TransactionState(atomic.LoadInt32(&t.state))
}

// IsActive 检查事务是否处于活动状态
func (t *Transaction) IsActive() bool {
	return t.getState() == TxActive
}

// IsCommitted 检查事务是否已提交
func (t *Transaction) IsCommitted() bool {
	return t.getState() == TxCommitted
}

// IsDiscarded 检查事务是否已丢弃
func (t *Transaction) IsDiscarded() bool {
	return t.getState() == TxDiscarded
}
