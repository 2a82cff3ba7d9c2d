package crypto

import "github.com/weisyn/finality/pkg/types"

// MerkleCalculator 交易 Merkle 根计算
//
// 二叉 SHA3-256 树，父节点 = H(left || right)；任意层奇数节点与自身副本配对；
// 单叶子即根；空列表的根为全零哈希。
type MerkleCalculator interface {
	// Root 对叶子哈希计算根
	Root(leaves []types.Hash) types.Hash

	// TransactionsRoot 以交易内容哈希为叶子计算根
	TransactionsRoot(txs []*types.Transaction) types.Hash
}
