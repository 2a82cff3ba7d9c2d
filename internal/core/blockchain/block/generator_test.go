package block

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/finality/internal/core/infrastructure/clock"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/finality/pkg/types"
)

var base = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestGenerator() (*Generator, *clock.MockClock) {
	clk := clock.NewMockClock(base)
	return NewGenerator(nil, nil, nil, clk, nil), clk
}

func testTx(account string, counter uint64) *types.Transaction {
	tx := &types.Transaction{CreatorAccountID: account, TxCounter: counter, CreatedTs: 1}
	signature.SignTransaction(signature.MustKeyPairFromSeed(account), hash.NewHashService(), tx, 1)
	return tx
}

func TestGenerateGenesisBlock(t *testing.T) {
	g, _ := newTestGenerator()
	peers := []string{"10.0.0.1:10001", "10.0.0.2:10001", "10.0.0.3:10001"}

	genesis, err := g.GenerateGenesisBlock(peers)
	require.NoError(t, err)

	assert.Equal(t, types.GenesisHeight, genesis.Height)
	assert.True(t, genesis.PrevHash.IsZero())
	assert.Equal(t, base.UnixMilli(), genesis.CreatedTs)
	assert.Equal(t, uint32(1), genesis.TxsNumber)
	require.Len(t, genesis.Transactions, 1)
	assert.Empty(t, genesis.Signatures, "创世区块未签名")

	tx := genesis.Transactions[0]
	assert.Equal(t, GenesisCreatorAccountID, tx.CreatorAccountID)
	assert.Equal(t, GenesisTxCounter, tx.TxCounter)
	require.Len(t, tx.Commands, len(peers))
	for i, cmd := range tx.Commands {
		peer, err := cmd.DecodeAddPeer()
		require.NoError(t, err)
		assert.Equal(t, peers[i], peer.Address)
		assert.Equal(t, PeerKeyForAddress(peers[i]), peer.PeerKey)
	}

	hasher := hash.NewHashService()
	assert.Equal(t, hasher.HashTransaction(tx), genesis.MerkleRoot, "单叶子即根")
	assert.Equal(t, hasher.HashBlock(genesis), genesis.Hash)
}

func TestGenerateGenesisBlockDeterministic(t *testing.T) {
	a, _ := newTestGenerator()
	b, _ := newTestGenerator()
	peers := []string{"a:1", "b:2"}

	ga, err := a.GenerateGenesisBlock(peers)
	require.NoError(t, err)
	gb, err := b.GenerateGenesisBlock(peers)
	require.NoError(t, err)
	assert.Equal(t, ga.Hash, gb.Hash, "相同输入与时间得到相同创世区块")
}

func TestGenerateGenesisBlockInvalidInput(t *testing.T) {
	g, _ := newTestGenerator()

	testCases := []struct {
		name  string
		peers []string
	}{
		{"nil列表", nil},
		{"空列表", []string{}},
		{"空地址", []string{"a:1", "  "}},
		{"重复地址", []string{"a:1", "a:1"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			block, err := g.GenerateGenesisBlock(tc.peers)
			assert.ErrorIs(t, err, types.ErrInvalidGenesisInput)
			assert.Nil(t, block)
		})
	}
}

func TestGenerateBlockLinkage(t *testing.T) {
	g, clk := newTestGenerator()
	hasher := hash.NewHashService()

	genesis, err := g.GenerateGenesisBlock([]string{"a:1"})
	require.NoError(t, err)

	prev := genesis
	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
		verified := &types.VerifiedProposal{
			Height:       prev.Height + 1,
			Transactions: []*types.Transaction{testTx("alice@test", uint64(i+1))},
		}
		next, err := g.GenerateBlock(prev, verified)
		require.NoError(t, err)

		assert.Equal(t, prev.Height+1, next.Height)
		assert.Equal(t, prev.Hash, next.PrevHash)
		assert.Equal(t, clk.Now().UnixMilli(), next.CreatedTs)
		assert.Equal(t, hasher.HashBlock(next), next.Hash)
		prev = next
	}
	assert.Equal(t, uint64(6), prev.Height)
}

func TestGenerateBlockFromProposalSubset(t *testing.T) {
	g, _ := newTestGenerator()
	genesis, err := g.GenerateGenesisBlock([]string{"a:1"})
	require.NoError(t, err)

	txs := []*types.Transaction{testTx("u0@test", 1), testTx("u1@test", 1), testTx("u2@test", 1)}
	verified := &types.VerifiedProposal{Height: 2, Transactions: []*types.Transaction{txs[0], txs[2]}}

	block, err := g.GenerateBlock(genesis, verified)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), block.TxsNumber)
	assert.Equal(t, []*types.Transaction{txs[0], txs[2]}, block.Transactions)
	assert.Equal(t, merkle.NewCalculator(nil).TransactionsRoot(verified.Transactions), block.MerkleRoot)

	// 修改提案切片不影响区块
	verified.Transactions[0] = txs[1]
	assert.Same(t, txs[0], block.Transactions[0])
}

func TestGenerateBlockEmptyProposal(t *testing.T) {
	g, _ := newTestGenerator()
	genesis, err := g.GenerateGenesisBlock([]string{"a:1"})
	require.NoError(t, err)

	block, err := g.GenerateBlock(genesis, &types.VerifiedProposal{Height: 2})
	require.NoError(t, err)
	assert.Zero(t, block.TxsNumber)
	assert.True(t, block.MerkleRoot.IsZero())
	assert.Equal(t, genesis.Hash, block.PrevHash)
}

func TestGenerateBlockPreviousHash(t *testing.T) {
	g, _ := newTestGenerator()
	genesis, err := g.GenerateGenesisBlock([]string{"a:1"})
	require.NoError(t, err)
	verified := &types.VerifiedProposal{Height: 2}

	t.Run("缺失哈希时重新计算", func(t *testing.T) {
		prev := genesis.Clone()
		prev.Hash = types.Hash{}
		block, err := g.GenerateBlock(prev, verified)
		require.NoError(t, err)
		assert.Equal(t, genesis.Hash, block.PrevHash)
	})

	t.Run("存储哈希与载荷不一致", func(t *testing.T) {
		prev := genesis.Clone()
		prev.Hash = types.Hash{0xab}
		_, err := g.GenerateBlock(prev, verified)
		assert.ErrorIs(t, err, types.ErrBlockLinkage)
	})

	t.Run("区块签名不影响链接", func(t *testing.T) {
		signed := signature.SignBlock(signature.MustKeyPairFromSeed("node"), genesis, 9)
		block, err := g.GenerateBlock(signed, verified)
		require.NoError(t, err)
		assert.Equal(t, genesis.Hash, block.PrevHash)
	})

	t.Run("空输入", func(t *testing.T) {
		_, err := g.GenerateBlock(nil, verified)
		assert.ErrorIs(t, err, types.ErrPreviousBlockUnavailable)
		_, err = g.GenerateBlock(genesis, nil)
		assert.Error(t, err)
	})
}

func TestPeerKeyForAddress(t *testing.T) {
	assert.Equal(t, PeerKeyForAddress("a:1"), PeerKeyForAddress("a:1"))
	assert.NotEqual(t, PeerKeyForAddress("a:1"), PeerKeyForAddress("a:2"))
}
