// Package hash 提供区块与交易的内容哈希
package hash

import (
	"golang.org/x/crypto/sha3"

	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/finality/pkg/types"
)

// 确保HashService实现了cryptointf.HashProvider接口
var _ cryptointf.HashProvider = (*HashService)(nil)

// HashService 基于 SHA3-256 的哈希服务
//
// 无状态，可并发使用。
type HashService struct{}

// NewHashService 创建新的哈希服务
func NewHashService() *HashService {
	return &HashService{}
}

// Hash 计算 SHA3-256
func (s *HashService) Hash(payload []byte) types.Hash {
	return types.Hash(sha3.Sum256(payload))
}

// TransactionPayload 交易规范编码（不含签名）
func (s *HashService) TransactionPayload(tx *types.Transaction) []byte {
	return appendTransactionPayload(nil, tx)
}

// HashTransaction 交易内容哈希
//
// 参数:
//   - tx: 交易，签名不参与哈希
//
// 返回:
//   - types.Hash: 交易身份
func (s *HashService) HashTransaction(tx *types.Transaction) types.Hash {
	return s.Hash(s.TransactionPayload(tx))
}

// BlockPayload 区块载荷规范编码
//
// 覆盖 height、prev_hash、merkle_root、created_ts、txs_number 与完整交易（含交易签名），
// 区块签名与 Hash 字段本身不参与编码。
func (s *HashService) BlockPayload(block *types.Block) []byte {
	return appendBlockPayload(nil, block)
}

// HashBlock 区块内容哈希
func (s *HashService) HashBlock(block *types.Block) types.Hash {
	return s.Hash(s.BlockPayload(block))
}
