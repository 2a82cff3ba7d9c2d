// Package simulator 定义模拟器接口
//
// 模拟器把有序提案转换为已验证提案，再转换为可提交的区块，
// 两类产物通过多播流发布，订阅者异步接收，不回放历史。
package simulator

import (
	"context"

	"github.com/weisyn/finality/pkg/types"
)

// VerifiedProposalHandler 已验证提案处理函数
type VerifiedProposalHandler func(verified *types.VerifiedProposal)

// BlockHandler 区块处理函数
type BlockHandler func(block *types.Block)

// Subscription 流订阅
type Subscription interface {
	ID() types.SubscriptionID

	// Unsubscribe 停止接收，尚未投递的事件被丢弃；可重复调用
	Unsubscribe()
}

// Simulator 提案到区块的转换流水线
type Simulator interface {
	// ProcessProposal 在新快照上验证提案并发布已验证提案
	ProcessProposal(ctx context.Context, proposal *types.Proposal) error

	// ProcessVerifiedProposal 基于上一区块构建新区块并发布
	ProcessVerifiedProposal(ctx context.Context, verified *types.VerifiedProposal) error

	OnVerifiedProposal(handler VerifiedProposalHandler) (Subscription, error)

	OnBlock(handler BlockHandler) (Subscription, error)

	// Reconcile 以存储链顶重置缓存区块，放弃等待构建的轮次
	//
	// 区块提交失败后调用，失败的高度可重新提交。
	Reconcile(ctx context.Context) error
}
