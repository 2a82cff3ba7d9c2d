// Package merkle 提供交易Merkle树相关功能
package merkle

import (
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/finality/pkg/types"
)

// 确保Calculator实现了cryptointf.MerkleCalculator接口
var _ cryptointf.MerkleCalculator = (*Calculator)(nil)

// Calculator Merkle 根计算
//
// 填充规则是协议常量：任意层出现奇数个节点时，最后一个节点与自身副本配对。
// 由于 [a,b,c] 与 [a,b,c,c] 得到相同的根，区块载荷同时哈希 txs_number 以区分两者。
type Calculator struct {
	hasher cryptointf.HashProvider
}

// NewCalculator 创建 Merkle 计算器，hasher 为 nil 时使用 SHA3-256
func NewCalculator(hasher cryptointf.HashProvider) *Calculator {
	if hasher == nil {
		hasher = hash.NewHashService()
	}
	return &Calculator{hasher: hasher}
}

// Root 计算叶子哈希的根
//
// 参数:
//   - leaves: 叶子哈希，顺序敏感
//
// 返回:
//   - types.Hash: 空列表为全零哈希，单叶子为叶子本身
func (c *Calculator) Root(leaves []types.Hash) types.Hash {
	if len(leaves) == 0 {
		return types.ZeroHash
	}
	level := append([]types.Hash(nil), leaves...)
	for len(level) > 1 {
		level = c.nextLevel(level)
	}
	return level[0]
}

// TransactionsRoot 以交易内容哈希为叶子计算根
func (c *Calculator) TransactionsRoot(txs []*types.Transaction) types.Hash {
	return c.Root(c.TransactionLeaves(txs))
}

// TransactionLeaves 交易内容哈希列表
func (c *Calculator) TransactionLeaves(txs []*types.Transaction) []types.Hash {
	leaves := make([]types.Hash, len(txs))
	for i, tx := range txs {
		leaves[i] = c.hasher.HashTransaction(tx)
	}
	return leaves
}

// nextLevel 两两合并，奇数时最后一个节点与自身配对
func (c *Calculator) nextLevel(level []types.Hash) []types.Hash {
	next := make([]types.Hash, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		left := level[i]
		right := left
		if i+1 < len(level) {
			right = level[i+1]
		}
		next = append(next, c.parent(left, right))
	}
	return next
}

// parent = H(left || right)
func (c *Calculator) parent(left, right types.Hash) types.Hash {
	combined := make([]byte, 0, 2*types.HashLength)
	combined = append(combined, left[:]...)
	combined = append(combined, right[:]...)
	return c.hasher.Hash(combined)
}
