// Package ledger 定义账本协作者接口
//
// 模拟器只依赖 TemporaryFactory 与 BlockQuery；Committer 由下游提交流程使用。
package ledger

import (
	"context"

	"github.com/weisyn/finality/pkg/types"
)

// TemporaryLedger 临时状态快照
//
// 快照中的写入只对本快照可见，Release 后全部丢弃。快照归单个轮次所有。
type TemporaryLedger interface {
	// GetAccountCounter 读取账户已使用的最大交易计数，不存在时 ok=false
	GetAccountCounter(ctx context.Context, accountID string) (counter uint64, ok bool, err error)

	SetAccountCounter(ctx context.Context, accountID string, counter uint64) error

	HasPeer(ctx context.Context, key types.PublicKey) (bool, error)

	AddPeer(ctx context.Context, peer types.AddPeer) error

	// Release 释放快照，可重复调用
	Release()
}

// TemporaryFactory 临时快照工厂
type TemporaryFactory interface {
	CreateSnapshot(ctx context.Context) (TemporaryLedger, error)
}

// BlockQuery 已提交区块查询
type BlockQuery interface {
	// GetLastBlock 返回最高已提交区块，存储为空时返回 types.ErrBlockNotFound
	GetLastBlock(ctx context.Context) (*types.Block, error)

	GetBlockByHeight(ctx context.Context, height uint64) (*types.Block, error)

	// GetTopHeight 最高已提交高度，存储为空时为 0
	GetTopHeight(ctx context.Context) (uint64, error)

	// GetPeers 已注册节点
	GetPeers(ctx context.Context) ([]types.AddPeer, error)
}

// Committer 区块持久化提交
type Committer interface {
	// CommitBlock 校验链接关系后原子写入区块及其状态变更
	CommitBlock(ctx context.Context, block *types.Block) error
}
