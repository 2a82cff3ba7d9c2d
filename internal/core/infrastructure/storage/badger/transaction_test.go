package badger

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试事务基本操作
func TestTransactionCRUD(t *testing.T) {
	store := setupTestStore(t)
	tx, err := store.BeginTransaction(context.Background(), true)
	require.NoError(t, err)
	defer tx.Discard()

	key := []byte("tx-test-key")
	value := []byte("tx-test-value")

	require.NoError(t, tx.Set(key, value))

	val, err := tx.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, val)

	exists, err := tx.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, tx.Delete(key))
	exists, err = tx.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransactionTTL(t *testing.T) {
	store := setupTestStore(t)
	tx, err := store.BeginTransaction(context.Background(), true)
	require.NoError(t, err)
	defer tx.Discard()

	require.NoError(t, tx.SetWithTTL([]byte("ttl"), []byte("v"), time.Hour))
	val, err := tx.Get([]byte("ttl"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)
}

func TestTransactionMerge(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	increment := func(existing, delta []byte) []byte {
		var current uint64
		if existing != nil {
			current = binary.BigEndian.Uint64(existing)
		}
		out := make([]byte, 8)
		binary.BigEndian.PutUint64(out, current+binary.BigEndian.Uint64(delta))
		return out
	}
	delta := make([]byte, 8)
	binary.BigEndian.PutUint64(delta, 2)

	tx, err := store.BeginTransaction(ctx, true)
	require.NoError(t, err)
	require.NoError(t, tx.Merge([]byte("counter"), delta, increment))
	require.NoError(t, tx.Merge([]byte("counter"), delta, increment))
	require.NoError(t, tx.Commit())

	val, err := store.Get(ctx, []byte("counter"))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), binary.BigEndian.Uint64(val))
}

func TestTransactionIsolationAndDiscard(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("k"), []byte("committed")))

	tx, err := store.BeginTransaction(ctx, true)
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("k"), []byte("pending")))

	val, err := store.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("committed"), val, "未提交的写入对外不可见")

	tx.Discard()
	tx.Discard()
	assert.False(t, tx.IsActive())

	_, err = tx.Get([]byte("k"))
	assert.ErrorIs(t, err, ErrTransactionClosed)
	assert.Error(t, tx.Commit())

	val, err = store.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("committed"), val)
}

func TestTransactionCommitTwice(t *testing.T) {
	store := setupTestStore(t)
	tx, err := store.BeginTransaction(context.Background(), true)
	require.NoError(t, err)
	require.NoError(t, tx.Set([]byte("a"), []byte("b")))
	require.NoError(t, tx.Commit())
	assert.Error(t, tx.Commit())
	tx.Discard()
}

func TestOpenTransactionBlocksClose(t *testing.T) {
	mem := setupTestStore(t)
	tx, err := mem.BeginTransaction(context.Background(), true)
	require.NoError(t, err)

	closed := make(chan struct{})
	go func() {
		_ = mem.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("写事务未结束时 Close 不应完成")
	case <-time.After(50 * time.Millisecond):
	}

	tx.Discard()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("事务结束后 Close 应完成")
	}
}
