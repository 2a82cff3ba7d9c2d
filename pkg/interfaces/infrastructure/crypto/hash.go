// Package crypto 定义哈希、Merkle 与签名接口
package crypto

import "github.com/weisyn/finality/pkg/types"

// HashProvider 区块与交易的内容哈希
//
// 所有副本对相同载荷字节必须得到相同哈希。
type HashProvider interface {
	// Hash 对任意载荷计算 SHA3-256
	Hash(payload []byte) types.Hash

	// TransactionPayload 交易的规范编码，不含交易签名
	TransactionPayload(tx *types.Transaction) []byte

	// HashTransaction 交易内容哈希
	HashTransaction(tx *types.Transaction) types.Hash

	// BlockPayload 区块载荷的规范编码，不含区块签名
	BlockPayload(block *types.Block) []byte

	// HashBlock 区块内容哈希
	HashBlock(block *types.Block) types.Hash
}
