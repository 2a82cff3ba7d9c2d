package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerconfig "github.com/weisyn/finality/internal/config/storage/badger"
	interfaces "github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
)

// setupTestStore 创建内存存储，测试结束自动关闭
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreBasicOperations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	key := []byte("test-key")
	value := []byte("test-value")

	val, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, val, "不存在的键返回 nil")

	require.NoError(t, store.Set(ctx, key, value))

	val, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, val)

	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Delete(ctx, key))
	exists, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Delete(ctx, []byte("missing")), "删除不存在的键不报错")
}

func TestStorePrefixScan(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, []byte("peer/a"), []byte("1")))
	require.NoError(t, store.Set(ctx, []byte("peer/b"), []byte("2")))
	require.NoError(t, store.Set(ctx, []byte("block/1"), []byte("3")))

	result, err := store.PrefixScan(ctx, []byte("peer/"))
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"peer/a": []byte("1"), "peer/b": []byte("2")}, result)
}

func TestStoreRunInTransaction(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	t.Run("成功提交", func(t *testing.T) {
		err := store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
			if err := tx.Set([]byte("k1"), []byte("v1")); err != nil {
				return err
			}
			return tx.Set([]byte("k2"), []byte("v2"))
		})
		require.NoError(t, err)

		val, err := store.Get(ctx, []byte("k2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), val)
	})

	t.Run("失败回滚", func(t *testing.T) {
		boom := errors.New("boom")
		err := store.RunInTransaction(ctx, func(tx interfaces.BadgerTransaction) error {
			require.NoError(t, tx.Set([]byte("k3"), []byte("v3")))
			return boom
		})
		require.ErrorIs(t, err, boom)

		exists, err := store.Exists(ctx, []byte("k3"))
		require.NoError(t, err)
		assert.False(t, exists, "回滚后的写入不可见")
	})
}

func TestStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	options := badgerconfig.New(nil).GetOptions()
	options.Path = dir
	options.MemTableSize = 1 << 20
	options.BlockCacheSize = 1 << 20
	options.IndexCacheSize = 1 << 20
	cfg := badgerconfig.NewFromOptions(options)

	store, err := New(cfg, nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, []byte("persist"), []byte("yes")))
	require.NoError(t, store.Close())

	reopened, err := New(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	val, err := reopened.Get(ctx, []byte("persist"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), val, "重新打开后数据仍在")
}

func TestStoreClosedRejectsWrites(t *testing.T) {
	store, err := New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "重复关闭不报错")

	err = store.Set(context.Background(), []byte("k"), []byte("v"))
	assert.ErrorIs(t, err, ErrStoreClosing)

	_, err = store.BeginTransaction(context.Background(), true)
	assert.ErrorIs(t, err, ErrStoreClosing)
}

func TestStoreCanceledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, []byte("k"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Set(ctx, []byte("k"), []byte("v")), context.Canceled)
	_, err = store.BeginTransaction(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}
