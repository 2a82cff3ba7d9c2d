package merkle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/pkg/types"
)

func leaf(b byte) types.Hash {
	return hash.NewHashService().Hash([]byte{b})
}

func pair(a, b types.Hash) types.Hash {
	buf := append(append([]byte{}, a[:]...), b[:]...)
	return hash.NewHashService().Hash(buf)
}

func TestRoot(t *testing.T) {
	calc := NewCalculator(nil)
	a, b, c := leaf(1), leaf(2), leaf(3)

	testCases := []struct {
		name     string
		leaves   []types.Hash
		expected types.Hash
	}{
		{"空列表", nil, types.ZeroHash},
		{"单叶子", []types.Hash{a}, a},
		{"两个叶子", []types.Hash{a, b}, pair(a, b)},
		{"奇数叶子复制最后一个", []types.Hash{a, b, c}, pair(pair(a, b), pair(c, c))},
		{"四个叶子", []types.Hash{a, b, c, a}, pair(pair(a, b), pair(c, a))},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, calc.Root(tc.leaves))
		})
	}
}

func TestRootOrderSensitive(t *testing.T) {
	calc := NewCalculator(nil)
	a, b := leaf(1), leaf(2)
	assert.NotEqual(t, calc.Root([]types.Hash{a, b}), calc.Root([]types.Hash{b, a}))
}

func TestRootDuplicatePaddingCollision(t *testing.T) {
	// 复制填充的已知性质：[a,b,c] 与 [a,b,c,c] 根相同
	calc := NewCalculator(nil)
	a, b, c := leaf(1), leaf(2), leaf(3)
	assert.Equal(t, calc.Root([]types.Hash{a, b, c}), calc.Root([]types.Hash{a, b, c, c}))
}

func TestRootDoesNotMutateInput(t *testing.T) {
	calc := NewCalculator(nil)
	leaves := []types.Hash{leaf(1), leaf(2), leaf(3)}
	snapshot := append([]types.Hash(nil), leaves...)
	calc.Root(leaves)
	assert.Equal(t, snapshot, leaves)
}

func TestTransactionsRoot(t *testing.T) {
	hasher := hash.NewHashService()
	calc := NewCalculator(hasher)
	tx := &types.Transaction{CreatorAccountID: "admin@genesis", TxCounter: 1}

	assert.Equal(t, hasher.HashTransaction(tx), calc.TransactionsRoot([]*types.Transaction{tx}))
	assert.Equal(t, types.ZeroHash, calc.TransactionsRoot(nil))
}

func TestProofs(t *testing.T) {
	calc := NewCalculator(nil)

	for n := 1; n <= 9; n++ {
		leaves := make([]types.Hash, n)
		for i := range leaves {
			leaves[i] = leaf(byte(i))
		}
		tree := calc.NewTree(leaves)
		require.Equal(t, calc.Root(leaves), tree.Root(), "n=%d", n)

		for i := 0; i < n; i++ {
			proof, err := tree.Proof(i)
			require.NoError(t, err)
			assert.True(t, calc.VerifyProof(leaves[i], proof, tree.Root()), "n=%d i=%d", n, i)
			assert.False(t, calc.VerifyProof(leaf(200), proof, tree.Root()), "错误叶子不应通过 n=%d i=%d", n, i)
		}
	}
}

func TestProofErrors(t *testing.T) {
	calc := NewCalculator(nil)
	tree := calc.NewTree([]types.Hash{leaf(1), leaf(2)})

	_, err := tree.Proof(2)
	assert.Error(t, err)
	_, err = tree.Proof(-1)
	assert.Error(t, err)

	empty := calc.NewTree(nil)
	assert.Equal(t, types.ZeroHash, empty.Root())
	_, err = empty.Proof(0)
	assert.Error(t, err)

	assert.False(t, calc.VerifyProof(leaf(1), nil, tree.Root()))
}
