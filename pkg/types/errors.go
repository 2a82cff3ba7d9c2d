package types

import (
	"errors"
	"fmt"
)

// 错误分类
//
// 轮次失败统一包装为 *RoundError，调用方据此区分"轮次失败需重新提交"
// 与"轮次成功但区块为空"。签名校验失败是布尔结果，不属于错误。
var (
	ErrInvalidLength = errors.New("invalid length")

	// ErrSnapshotUnavailable 无法获取临时账本快照
	ErrSnapshotUnavailable = errors.New("temporary ledger snapshot unavailable")
	// ErrValidationFailed 有状态验证器基础设施故障（不是交易被拒绝）
	ErrValidationFailed = errors.New("stateful validation failed")
	// ErrPreviousBlockUnavailable 无法读取上一个已提交区块
	ErrPreviousBlockUnavailable = errors.New("previous block unavailable")
	// ErrInvalidGenesisInput 创世输入无效（例如节点列表为空）
	ErrInvalidGenesisInput = errors.New("invalid genesis input")

	ErrOutOfOrderProposal = errors.New("proposal height out of order")
	ErrHeightMismatch     = errors.New("verified proposal height does not follow previous block")
	ErrRoundInProgress    = errors.New("simulator round in progress")
	ErrNoPendingProposal  = errors.New("verified proposal does not match pending round")

	// ErrBlockNotFound 存储中不存在请求的区块
	ErrBlockNotFound = errors.New("block not found")
	// ErrBlockLinkage 区块不满足高度或哈希链接
	ErrBlockLinkage = errors.New("block linkage violated")
	// ErrSnapshotReleased 快照已释放
	ErrSnapshotReleased = errors.New("snapshot released")
)

// RoundStage 轮次阶段
type RoundStage string

const (
	RoundStageValidate RoundStage = "validate"
	RoundStageBuild    RoundStage = "build"
)

// RoundError 轮次失败
type RoundError struct {
	Stage  RoundStage // 失败阶段
	Height uint64     // 提案高度
	Err    error      // 原因，可用 errors.Is 匹配上面的哨兵错误
}

// Error 实现 error 接口
func (e *RoundError) Error() string {
	return fmt.Sprintf("round failed: stage=%s height=%d: %v", e.Stage, e.Height, e.Err)
}

// Unwrap 支持 errors.Is / errors.As
func (e *RoundError) Unwrap() error { return e.Err }

// IsRoundFailure 检查错误是否为轮次失败
func IsRoundFailure(err error) (*RoundError, bool) {
	var re *RoundError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
