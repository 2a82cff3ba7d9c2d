// Package validation 定义有状态验证器接口
package validation

import (
	"context"

	"github.com/weisyn/finality/pkg/interfaces/ledger"
	"github.com/weisyn/finality/pkg/types"
)

// StatefulValidator 有状态验证器
//
// Validate 返回提案交易的保序子序列；交易被拒绝不是错误。
// 只有基础设施故障（快照读写失败、ctx 结束）才返回 error。
//
// 实现必须在 ctx 结束后尽快返回：模拟器超时后不再等待结果，
// 忽略 ctx 的实现会让每个超时轮次遗留一个 goroutine。快照在超时后被释放，
// 之后的快照读写返回错误。
type StatefulValidator interface {
	Validate(ctx context.Context, proposal *types.Proposal, snapshot ledger.TemporaryLedger) (*types.VerifiedProposal, error)
}
