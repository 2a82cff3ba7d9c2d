// Package block 定义区块构建接口
package block

import "github.com/weisyn/finality/pkg/types"

// BlockGenerator 区块构建
//
// 产出的区块已计算哈希但未签名。
type BlockGenerator interface {
	// GenerateGenesisBlock 构建创世区块，peers 为空时返回 types.ErrInvalidGenesisInput
	GenerateGenesisBlock(peers []string) (*types.Block, error)

	// GenerateBlock 在 previous 之上构建下一个区块
	GenerateBlock(previous *types.Block, verified *types.VerifiedProposal) (*types.Block, error)
}

// TransactionGenerator 生成系统交易
type TransactionGenerator interface {
	// GenerateGenesisTransaction 每个节点地址对应一条 AddPeer 命令
	GenerateGenesisTransaction(createdTs int64, peers []string) (*types.Transaction, error)
}
