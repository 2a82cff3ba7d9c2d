// Package simulator 提案到区块的转换流水线
//
// 一轮从 ProcessProposal 开始，到区块发布（或轮次失败）结束。轮次之间串行：
// 轮次进行中再次调用 ProcessProposal 会阻塞，直到模拟器回到 Idle 或 ctx 结束。
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	eventconfig "github.com/weisyn/finality/internal/config/event"
	simulatorconfig "github.com/weisyn/finality/internal/config/simulator"
	"github.com/weisyn/finality/internal/core/infrastructure/event"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	eventintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	simulatorintf "github.com/weisyn/finality/pkg/interfaces/simulator"
	validationintf "github.com/weisyn/finality/pkg/interfaces/validation"
	"github.com/weisyn/finality/pkg/types"
)

var _ simulatorintf.Simulator = (*Simulator)(nil)

// Simulator 模拟器
type Simulator struct {
	factory   ledgerintf.TemporaryFactory
	validator validationintf.StatefulValidator
	query     ledgerintf.BlockQuery
	generator blockintf.BlockGenerator
	config    *simulatorconfig.Config
	logger    logintf.Logger

	verifiedFeed *event.Feed[*types.VerifiedProposal]
	blockFeed    *event.Feed[*types.Block]

	// idle 容量为 1 的令牌，持有令牌即占用轮次
	idle chan struct{}

	mu                 sync.Mutex
	state              State
	pending            *types.VerifiedProposal
	lastProposalHeight uint64
	lastBlock          *types.Block
	roundStarted       time.Time
}

// New 创建模拟器
//
// 参数:
//   - bus: 承载已验证提案流与区块流的事件总线，事件系统禁用时返回 event.ErrEventBusDisabled
//   - eventCfg / cfg: 可为 nil，使用默认配置
func New(
	factory ledgerintf.TemporaryFactory,
	validator validationintf.StatefulValidator,
	query ledgerintf.BlockQuery,
	generator blockintf.BlockGenerator,
	bus eventintf.EventBus,
	eventCfg *eventconfig.Config,
	cfg *simulatorconfig.Config,
	logger logintf.Logger,
) (*Simulator, error) {
	if factory == nil || validator == nil || query == nil || generator == nil || bus == nil {
		return nil, errors.New("模拟器依赖不完整")
	}
	if cfg == nil {
		cfg = simulatorconfig.New(nil)
	}
	logger = log.NewModuleLogger(logger, "simulator")

	verifiedFeed, err := event.NewFeed[*types.VerifiedProposal](bus, types.EventTypeVerifiedProposal, eventCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("创建已验证提案流失败: %w", err)
	}
	blockFeed, err := event.NewFeed[*types.Block](bus, types.EventTypeBlock, eventCfg, logger)
	if err != nil {
		_ = verifiedFeed.Close()
		return nil, fmt.Errorf("创建区块流失败: %w", err)
	}

	initMetrics()

	s := &Simulator{
		factory:      factory,
		validator:    validator,
		query:        query,
		generator:    generator,
		config:       cfg,
		logger:       logger,
		verifiedFeed: verifiedFeed,
		blockFeed:    blockFeed,
		idle:         make(chan struct{}, 1),
	}
	s.idle <- struct{}{}
	return s, nil
}

// ProcessProposal 在新快照上验证提案并发布已验证提案
//
// 成功后轮次保持占用，直到对应的 ProcessVerifiedProposal 发布区块或失败。
// 所有交易被拒绝时仍发布空的已验证提案。
//
// 返回:
//   - types.ErrRoundInProgress: 等待上一轮期间 ctx 结束
//   - types.ErrOutOfOrderProposal: 高度未严格递增
//   - *types.RoundError: 快照或验证失败，轮次结束，可用相同高度重新提交
func (s *Simulator) ProcessProposal(ctx context.Context, proposal *types.Proposal) error {
	if proposal == nil {
		return errors.New("提案为空")
	}
	if err := s.acquire(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.checkOrder(proposal.Height); err != nil {
		s.mu.Unlock()
		s.release()
		return err
	}
	s.state = StateValidating
	s.roundStarted = time.Now()
	s.mu.Unlock()

	verified, err := s.validate(ctx, proposal)
	if err != nil {
		s.logger.Warnf("提案验证失败: height=%d err=%v", proposal.Height, err)
		s.fail(outcomeValidateError)
		return &types.RoundError{Stage: types.RoundStageValidate, Height: proposal.Height, Err: err}
	}

	accepted := len(verified.Transactions)
	observeTransactions(accepted, len(proposal.Transactions)-accepted)

	s.mu.Lock()
	s.pending = verified
	s.lastProposalHeight = proposal.Height
	s.state = StateProposalVerified
	s.mu.Unlock()

	s.logger.Debugf("提案已验证: height=%d accepted=%d rejected=%d",
		proposal.Height, accepted, len(proposal.Transactions)-accepted)
	s.verifiedFeed.Send(verified)
	return nil
}

// ProcessVerifiedProposal 基于上一区块构建新区块并发布
//
// verified 必须是本轮发布的已验证提案本身，区块只包含验证器接受的交易。
// 上一区块优先取存储中的最新区块；存储尚未推进（为空或低于缓存）时使用缓存的 last_block，
// 缓存领先存储超过 MaxCommitLag 时视为上一区块不可用。
//
// 返回:
//   - types.ErrNoPendingProposal: verified 不是本轮待构建的已验证提案，轮次不受影响
//   - *types.RoundError: 上一区块不可用、高度不衔接或构建失败，轮次结束
func (s *Simulator) ProcessVerifiedProposal(ctx context.Context, verified *types.VerifiedProposal) error {
	if verified == nil {
		return fmt.Errorf("%w: 已验证提案为空", types.ErrNoPendingProposal)
	}

	s.mu.Lock()
	if s.state != StateProposalVerified || s.pending != verified {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: height=%d state=%s", types.ErrNoPendingProposal, verified.Height, state)
	}
	pending := s.pending
	s.state = StateBuildingBlock
	s.pending = nil
	cached := s.lastBlock
	started := s.roundStarted
	s.mu.Unlock()

	block, err := s.build(ctx, pending, cached)
	if err != nil {
		s.logger.Warnf("区块构建失败: height=%d err=%v", pending.Height, err)
		s.fail(outcomeBuildError)
		return &types.RoundError{Stage: types.RoundStageBuild, Height: pending.Height, Err: err}
	}

	s.mu.Lock()
	s.lastBlock = block
	s.state = StateBlockReady
	s.mu.Unlock()

	blockHeight.Set(float64(block.Height))
	observeRound(outcomeBlock, started)
	s.logger.Infof("区块已生成: height=%d hash=%s txs=%d", block.Height, block.Hash.Short(), block.TxsNumber)
	s.blockFeed.Send(block)

	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
	s.release()
	return nil
}

// OnVerifiedProposal 订阅已验证提案流，不回放历史
func (s *Simulator) OnVerifiedProposal(handler simulatorintf.VerifiedProposalHandler) (simulatorintf.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler 不能为空")
	}
	sub, err := s.verifiedFeed.Subscribe(handler)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// OnBlock 订阅区块流，不回放历史
func (s *Simulator) OnBlock(handler simulatorintf.BlockHandler) (simulatorintf.Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler 不能为空")
	}
	sub, err := s.blockFeed.Subscribe(handler)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Reconcile 以存储链顶重置缓存区块与提案高度
//
// 区块提交失败或下游停止消费后调用：未落盘的缓存区块被丢弃，下一轮可从存储链顶的
// 下一高度重新提交。停留在 ProposalVerified 的轮次被放弃并释放；验证或构建中的轮次不受影响。
func (s *Simulator) Reconcile(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.GetBlockQueryTimeout())
	defer cancel()

	stored, err := callWithContext(ctx, s.query.GetLastBlock)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrBlockNotFound):
		stored = nil
	default:
		return fmt.Errorf("%w: %w", types.ErrPreviousBlockUnavailable, err)
	}

	s.mu.Lock()
	s.lastBlock = stored
	s.lastProposalHeight = 0
	if stored != nil {
		s.lastProposalHeight = stored.Height
	}
	abandoned := s.state == StateProposalVerified
	if abandoned {
		s.pending = nil
		s.state = StateIdle
	}
	height := s.lastProposalHeight
	s.mu.Unlock()

	if abandoned {
		observeRound(outcomeAbandoned, time.Time{})
		s.release()
	}
	s.logger.Infof("模拟器已与存储对齐: top=%d abandoned=%v", height, abandoned)
	return nil
}

// State 当前轮次状态
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastBlock 最近发布的区块
func (s *Simulator) LastBlock() *types.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBlock
}

// Close 关闭两个流，未投递的事件被丢弃
func (s *Simulator) Close() error {
	return errors.Join(s.verifiedFeed.Close(), s.blockFeed.Close())
}

// acquire 等待模拟器空闲
func (s *Simulator) acquire(ctx context.Context) error {
	select {
	case <-s.idle:
		return nil
	default:
	}
	select {
	case <-s.idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", types.ErrRoundInProgress, ctx.Err())
	}
}

func (s *Simulator) release() {
	s.idle <- struct{}{}
}

// fail 轮次失败，回到 Idle
//
// 提案高度回退到最近发布区块的高度，失败轮次的高度可以重新提交。
func (s *Simulator) fail(outcome string) {
	s.mu.Lock()
	s.state = StateIdle
	s.pending = nil
	s.lastProposalHeight = 0
	if s.lastBlock != nil {
		s.lastProposalHeight = s.lastBlock.Height
	}
	s.mu.Unlock()
	observeRound(outcome, time.Time{})
	s.release()
}

// checkOrder 高度必须大于上一提案与缓存区块，调用方持有 mu
func (s *Simulator) checkOrder(height uint64) error {
	if height <= s.lastProposalHeight {
		return fmt.Errorf("%w: height=%d last_proposal=%d", types.ErrOutOfOrderProposal, height, s.lastProposalHeight)
	}
	if s.lastBlock != nil && height <= s.lastBlock.Height {
		return fmt.Errorf("%w: height=%d last_block=%d", types.ErrOutOfOrderProposal, height, s.lastBlock.Height)
	}
	return nil
}

// validate 获取快照并运行有状态验证，快照在返回前释放
func (s *Simulator) validate(ctx context.Context, proposal *types.Proposal) (*types.VerifiedProposal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.GetValidationTimeout())
	defer cancel()

	snapshot, err := s.factory.CreateSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrSnapshotUnavailable, err)
	}
	defer snapshot.Release()

	result, err := callWithContext(ctx, func(ctx context.Context) (*types.VerifiedProposal, error) {
		return s.validator.Validate(ctx, proposal, snapshot)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrValidationFailed, err)
	}

	var txs []*types.Transaction
	if result != nil {
		txs = result.Transactions
	}
	if !isSubsequence(proposal.Transactions, txs) {
		return nil, fmt.Errorf("%w: 验证结果不是提案交易的保序子序列", types.ErrValidationFailed)
	}

	return &types.VerifiedProposal{
		Height:       proposal.Height,
		CreatedTs:    proposal.CreatedTs,
		Transactions: append(make([]*types.Transaction, 0, len(txs)), txs...),
	}, nil
}

// build 确定上一区块并构建新区块
func (s *Simulator) build(ctx context.Context, verified *types.VerifiedProposal, cached *types.Block) (*types.Block, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.GetBlockQueryTimeout())
	defer cancel()

	stored, err := callWithContext(ctx, s.query.GetLastBlock)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrBlockNotFound) && cached != nil:
		stored = nil
	default:
		return nil, fmt.Errorf("%w: %w", types.ErrPreviousBlockUnavailable, err)
	}

	var storedHeight uint64
	if stored != nil {
		storedHeight = stored.Height
	}
	previous := stored
	if cached != nil && cached.Height > storedHeight {
		if lag := cached.Height - storedHeight; lag > s.config.GetMaxCommitLag() {
			return nil, fmt.Errorf("%w: 缓存区块 height=%d 领先存储 height=%d 超过 %d",
				types.ErrPreviousBlockUnavailable, cached.Height, storedHeight, s.config.GetMaxCommitLag())
		}
		previous = cached
	}
	if previous == nil {
		return nil, fmt.Errorf("%w: 存储返回空区块", types.ErrPreviousBlockUnavailable)
	}

	if verified.Height != previous.Height+1 {
		return nil, fmt.Errorf("%w: verified=%d previous=%d", types.ErrHeightMismatch, verified.Height, previous.Height)
	}
	return s.generator.GenerateBlock(previous, verified)
}

// callWithContext 在 ctx 结束时放弃等待 fn
//
// 放弃后 fn 所在的 goroutine 仍会运行到 fn 返回，fn 须响应 ctx。
func callWithContext[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// isSubsequence sub 中的交易按原顺序出现在 all 中
func isSubsequence(all, sub []*types.Transaction) bool {
	i := 0
	for _, tx := range sub {
		for i < len(all) && all[i] != tx {
			i++
		}
		if i == len(all) {
			return false
		}
		i++
	}
	return true
}
