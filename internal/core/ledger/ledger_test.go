package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/finality/internal/config/event"
	badgerconfig "github.com/weisyn/finality/internal/config/storage/badger"
	memoryconfig "github.com/weisyn/finality/internal/config/storage/memory"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/finality/internal/core/infrastructure/event"
	"github.com/weisyn/finality/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/finality/internal/core/infrastructure/storage/memory"
	"github.com/weisyn/finality/internal/core/infrastructure/writegate"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
	wgif "github.com/weisyn/finality/pkg/interfaces/infrastructure/writegate"
	"github.com/weisyn/finality/pkg/types"
)

type fixture struct {
	store     *badger.Store
	cache     *memory.Store
	hasher    *hash.HashService
	factory   *SnapshotFactory
	query     *QueryService
	committer *Committer
	bus       *event.EventBus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := badger.New(badgerconfig.NewInMemory(), nil)
	require.NoError(t, err)
	cache, err := memory.New(memoryconfig.New(nil), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = cache.Close()
		_ = store.Close()
	})

	hasher := hash.NewHashService()
	bus := event.New(eventconfig.New(nil), nil)
	return &fixture{
		store:     store,
		cache:     cache,
		hasher:    hasher,
		factory:   NewSnapshotFactory(store, nil),
		query:     NewQueryService(store, cache, nil),
		committer: NewCommitter(store, cache, hasher, bus, nil),
		bus:       bus,
	}
}

// makeBlock 按生成规则构造区块
func (f *fixture) makeBlock(prev *types.Block, txs ...*types.Transaction) *types.Block {
	block := &types.Block{
		Height:       types.GenesisHeight,
		CreatedTs:    time.Now().UnixMilli(),
		TxsNumber:    uint32(len(txs)),
		Transactions: txs,
		MerkleRoot:   merkle.NewCalculator(f.hasher).TransactionsRoot(txs),
	}
	if prev != nil {
		block.Height = prev.Height + 1
		block.PrevHash = prev.Hash
	}
	block.Hash = f.hasher.HashBlock(block)
	return block
}

func peerTx(address string, key byte) *types.Transaction {
	return &types.Transaction{
		CreatorAccountID: "admin@genesis",
		TxCounter:        1,
		Commands:         []types.Command{types.NewAddPeerCommand(types.AddPeer{Address: address, PeerKey: types.PublicKey{key}})},
	}
}

func TestEmptyLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	top, err := f.query.GetTopHeight(ctx)
	require.NoError(t, err)
	assert.Zero(t, top)

	_, err = f.query.GetLastBlock(ctx)
	assert.ErrorIs(t, err, types.ErrBlockNotFound)
	assert.True(t, IsNotFound(err))

	_, err = f.query.GetBlockByHeight(ctx, 5)
	assert.ErrorIs(t, err, types.ErrBlockNotFound)
}

func TestCommitChain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	genesis := f.makeBlock(nil, peerTx("10.0.0.1:10001", 1), peerTx("10.0.0.2:10001", 2))
	require.NoError(t, f.committer.CommitBlock(ctx, genesis))

	next := f.makeBlock(genesis, &types.Transaction{CreatorAccountID: "alice@test", TxCounter: 7})
	require.NoError(t, f.committer.CommitBlock(ctx, next))

	last, err := f.query.GetLastBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, next.Hash, last.Hash)
	assert.Equal(t, next.Hash, f.hasher.HashBlock(last), "解码后的区块哈希不变")

	byHash, err := f.query.GetBlockByHash(ctx, genesis.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.GenesisHeight, byHash.Height)

	peers, err := f.query.GetPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, "10.0.0.1:10001", peers[0].Address)

	snap, err := f.factory.CreateSnapshot(ctx)
	require.NoError(t, err)
	defer snap.Release()
	counter, ok, err := snap.GetAccountCounter(ctx, "alice@test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(7), counter)
}

func TestCommitRejectsBadLinkage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	genesis := f.makeBlock(nil)
	require.NoError(t, f.committer.CommitBlock(ctx, genesis))

	testCases := []struct {
		name  string
		block func() *types.Block
	}{
		{"重复高度", func() *types.Block { return f.makeBlock(nil) }},
		{"跳过高度", func() *types.Block {
			b := f.makeBlock(genesis)
			b.Height = 3
			b.Hash = f.hasher.HashBlock(b)
			return b
		}},
		{"前一哈希错误", func() *types.Block {
			b := f.makeBlock(genesis)
			b.PrevHash = types.Hash{0xde, 0xad}
			b.Hash = f.hasher.HashBlock(b)
			return b
		}},
		{"哈希与载荷不一致", func() *types.Block {
			b := f.makeBlock(genesis)
			b.CreatedTs++
			return b
		}},
		{"交易数不一致", func() *types.Block {
			b := f.makeBlock(genesis)
			b.TxsNumber = 4
			b.Hash = f.hasher.HashBlock(b)
			return b
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.committer.CommitBlock(ctx, tc.block())
			assert.ErrorIs(t, err, types.ErrBlockLinkage)
		})
	}

	top, err := f.query.GetTopHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.GenesisHeight, top, "失败的提交不推进链顶")
}

func TestCommitRejectsNonGenesisOnEmptyLedger(t *testing.T) {
	f := newFixture(t)
	block := f.makeBlock(&types.Block{Height: 1, Hash: types.Hash{1}})
	err := f.committer.CommitBlock(context.Background(), block)
	assert.ErrorIs(t, err, types.ErrBlockLinkage)
}

func TestCommitPublishesEvent(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var got []uint64
	require.NoError(t, f.bus.Subscribe(types.EventTypeBlockCommitted, func(b *types.Block) {
		mu.Lock()
		got = append(got, b.Height)
		mu.Unlock()
	}))

	require.NoError(t, f.committer.CommitBlock(context.Background(), f.makeBlock(nil)))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1}, got)
}

func TestEnsureGenesis(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	genesis := f.makeBlock(nil, peerTx("a", 1))
	require.NoError(t, f.committer.EnsureGenesis(ctx, f.query, genesis))
	require.NoError(t, f.committer.EnsureGenesis(ctx, f.query, genesis), "重复调用幂等")

	other := f.makeBlock(nil, peerTx("b", 2))
	assert.ErrorIs(t, f.committer.EnsureGenesis(ctx, f.query, other), types.ErrBlockLinkage)

	assert.ErrorIs(t, f.committer.EnsureGenesis(ctx, f.query, f.makeBlock(genesis)), types.ErrInvalidGenesisInput)
}

func TestSnapshotIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	snap, err := f.factory.CreateSnapshot(ctx)
	require.NoError(t, err)

	require.NoError(t, snap.SetAccountCounter(ctx, "bob@test", 3))
	require.NoError(t, snap.AddPeer(ctx, types.AddPeer{Address: "x", PeerKey: types.PublicKey{9}}))

	counter, ok, err := snap.GetAccountCounter(ctx, "bob@test")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), counter)
	has, err := snap.HasPeer(ctx, types.PublicKey{9})
	require.NoError(t, err)
	assert.True(t, has)

	// 另一个快照看不到未提交写入
	other, err := f.factory.CreateSnapshot(ctx)
	require.NoError(t, err)
	_, ok, err = other.GetAccountCounter(ctx, "bob@test")
	require.NoError(t, err)
	assert.False(t, ok)
	other.Release()

	snap.Release()
	snap.Release()
	_, _, err = snap.GetAccountCounter(ctx, "bob@test")
	assert.ErrorIs(t, err, types.ErrSnapshotReleased)

	peers, err := f.query.GetPeers(ctx)
	require.NoError(t, err)
	assert.Empty(t, peers, "释放后写入被丢弃")
}

func TestQueryCacheServesCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	genesis := f.makeBlock(nil, peerTx("a", 1))
	require.NoError(t, f.committer.CommitBlock(ctx, genesis))

	a, err := f.query.GetBlockByHeight(ctx, 1)
	require.NoError(t, err)
	a.Height = 99

	b, err := f.query.GetBlockByHeight(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), b.Height)

	// 缓存清空后从 BadgerDB 读取
	require.NoError(t, f.cache.Clear(ctx))
	c, err := f.query.GetBlockByHeight(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, genesis.Hash, c.Hash)
}

func TestCodecRoundTrip(t *testing.T) {
	f := newFixture(t)
	block := f.makeBlock(nil, peerTx("a", 1))
	block.Signatures = []types.Signature{{PublicKey: types.PublicKey{1}, Timestamp: 3}}

	data, err := encodeBlock(block)
	require.NoError(t, err)
	decoded, err := decodeBlock(data)
	require.NoError(t, err)
	assert.Equal(t, block.Hash, decoded.Hash)
	assert.Equal(t, block.Hash, f.hasher.HashBlock(decoded))
	assert.Equal(t, block.Signatures, decoded.Signatures)

	_, err = decodeBlock([]byte("not snappy"))
	assert.Error(t, err)
}

type brokenStore struct {
	storage.BadgerStore
}

func (brokenStore) RunInTransaction(context.Context, func(storage.BadgerTransaction) error) error {
	return errors.New("value log corrupted")
}

func TestCommitWriteGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gate := writegate.New(nil)
	f.committer.WithWriteGate(gate)

	genesis := f.makeBlock(nil)
	require.NoError(t, f.committer.CommitBlock(ctx, genesis))

	// 链接错误不影响门闸
	err := f.committer.CommitBlock(ctx, f.makeBlock(nil))
	assert.ErrorIs(t, err, types.ErrBlockLinkage)
	assert.False(t, gate.IsReadOnly())

	// 存储层故障使账本进入只读
	broken := NewCommitter(brokenStore{f.store}, nil, f.hasher, nil, nil).WithWriteGate(gate)
	next := f.makeBlock(genesis)
	assert.Error(t, broken.CommitBlock(ctx, next))
	assert.True(t, gate.IsReadOnly())
	assert.Contains(t, gate.ReadOnlyReason(), "value log corrupted")

	err = f.committer.CommitBlock(ctx, next)
	assert.ErrorIs(t, err, wgif.ErrWriteBlocked)

	gate.ExitReadOnly()
	require.NoError(t, f.committer.CommitBlock(ctx, next))
	top, err := f.query.GetTopHeight(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), top)
}
