// Package pipeline 驱动模拟器轮次并提交区块
//
// Driver 是模拟器两条流的下游消费者：收到已验证提案即构建区块，
// 收到区块即用节点密钥签名并提交到账本。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	clockintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	simulatorintf "github.com/weisyn/finality/pkg/interfaces/simulator"
	"github.com/weisyn/finality/pkg/types"
)

// 错误定义
var (
	ErrDriverNotStarted = errors.New("driver not started")
	ErrDuplicateSubmit  = errors.New("proposal height already submitted")
)

// roundResult 一轮的最终结果
type roundResult struct {
	block *types.Block
	err   error
}

// Driver 轮次驱动
type Driver struct {
	sim       simulatorintf.Simulator
	committer ledgerintf.Committer
	query     ledgerintf.BlockQuery
	signer    cryptointf.Signer
	clock     clockintf.Clock
	logger    logintf.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	subs    []simulatorintf.Subscription
	waiters map[uint64]chan roundResult
}

// NewDriver 创建驱动
func NewDriver(
	sim simulatorintf.Simulator,
	committer ledgerintf.Committer,
	query ledgerintf.BlockQuery,
	signer cryptointf.Signer,
	clk clockintf.Clock,
	logger logintf.Logger,
) *Driver {
	return &Driver{
		sim:       sim,
		committer: committer,
		query:     query,
		signer:    signer,
		clock:     clk,
		logger:    log.NewModuleLogger(logger, "pipeline"),
		waiters:   make(map[uint64]chan roundResult),
	}
}

// Start 订阅模拟器的两条流，重复调用无副作用
func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	vsub, err := d.sim.OnVerifiedProposal(d.handleVerified)
	if err != nil {
		return fmt.Errorf("订阅已验证提案失败: %w", err)
	}
	bsub, err := d.sim.OnBlock(d.handleBlock)
	if err != nil {
		vsub.Unsubscribe()
		return fmt.Errorf("订阅区块失败: %w", err)
	}

	d.ctx, d.cancel = context.WithCancel(context.Background())
	d.subs = []simulatorintf.Subscription{vsub, bsub}
	d.logger.Info("流水线驱动已启动")
	return nil
}

// Stop 取消订阅，等待中的 Submit 以 context.Canceled 结束
//
// 已发布已验证提案但尚未构建的轮次随之放弃，模拟器与存储链顶对齐。
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel == nil {
		return
	}
	for _, sub := range d.subs {
		sub.Unsubscribe()
	}
	d.cancel()
	d.cancel = nil
	d.subs = nil
	for height, ch := range d.waiters {
		ch <- roundResult{err: context.Canceled}
		delete(d.waiters, height)
	}
	if err := d.sim.Reconcile(context.Background()); err != nil {
		d.logger.Warnf("模拟器对齐失败: %v", err)
	}
	d.logger.Info("流水线驱动已停止")
}

// Bootstrap 账本为空时构建、签名并提交创世区块
//
// 返回当前链顶区块。
func (d *Driver) Bootstrap(ctx context.Context, generator blockintf.BlockGenerator, peers []string) (*types.Block, error) {
	top, err := d.query.GetTopHeight(ctx)
	if err != nil {
		return nil, err
	}
	if top > 0 {
		d.logger.Infof("账本已初始化，跳过创世: top=%d", top)
		return d.query.GetLastBlock(ctx)
	}

	genesis, err := generator.GenerateGenesisBlock(peers)
	if err != nil {
		return nil, err
	}
	signed := signature.SignBlock(d.signer, genesis, d.clock.Now().UnixMilli())
	if err := d.committer.CommitBlock(ctx, signed); err != nil {
		return nil, fmt.Errorf("提交创世区块失败: %w", err)
	}
	d.logger.Infof("创世区块已提交: hash=%s peers=%d", signed.Hash.Short(), len(peers))
	return signed, nil
}

// Submit 提交提案并等待该轮区块提交
//
// 返回:
//   - *types.Block: 已签名并提交的区块，交易可能被全部过滤
//   - error: 轮次失败（*types.RoundError）、提交失败或 ctx 结束
func (d *Driver) Submit(ctx context.Context, proposal *types.Proposal) (*types.Block, error) {
	if proposal == nil {
		return nil, errors.New("提案为空")
	}

	d.mu.Lock()
	if d.cancel == nil {
		d.mu.Unlock()
		return nil, ErrDriverNotStarted
	}
	if _, exists := d.waiters[proposal.Height]; exists {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: height=%d", ErrDuplicateSubmit, proposal.Height)
	}
	done := make(chan roundResult, 1)
	d.waiters[proposal.Height] = done
	d.mu.Unlock()

	if err := d.sim.ProcessProposal(ctx, proposal); err != nil {
		d.removeWaiter(proposal.Height, done)
		return nil, err
	}

	select {
	case r := <-done:
		return r.block, r.err
	case <-ctx.Done():
		d.removeWaiter(proposal.Height, done)
		return nil, ctx.Err()
	}
}

// Drain 依次提交排序器中的全部提案
//
// 轮次失败时把提案放回排序器并返回错误。
func (d *Driver) Drain(ctx context.Context, seq *Sequencer) ([]*types.Block, error) {
	var blocks []*types.Block
	for {
		proposal, ok := seq.Next()
		if !ok {
			return blocks, nil
		}
		block, err := d.Submit(ctx, proposal)
		if err != nil {
			seq.Requeue(proposal)
			return blocks, err
		}
		blocks = append(blocks, block)
	}
}

func (d *Driver) handleVerified(verified *types.VerifiedProposal) {
	ctx := d.context()
	if err := d.sim.ProcessVerifiedProposal(ctx, verified); err != nil {
		d.logger.Warnf("构建区块失败: height=%d err=%v", verified.Height, err)
		d.complete(verified.Height, roundResult{err: err})
	}
}

func (d *Driver) handleBlock(block *types.Block) {
	// 流上的区块由所有订阅者共享，SignBlock 返回副本
	signed := signature.SignBlock(d.signer, block, d.clock.Now().UnixMilli())
	ctx := d.context()
	if err := d.committer.CommitBlock(ctx, signed); err != nil {
		d.logger.Errorf("提交区块失败: height=%d err=%v", block.Height, err)
		// 未落盘的区块不能作为下一轮的上一区块
		if rerr := d.sim.Reconcile(ctx); rerr != nil {
			d.logger.Errorf("模拟器对齐失败: %v", rerr)
			err = errors.Join(err, rerr)
		}
		d.complete(block.Height, roundResult{err: err})
		return
	}
	d.complete(block.Height, roundResult{block: signed})
}

func (d *Driver) context() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return context.Background()
	}
	return d.ctx
}

func (d *Driver) complete(height uint64, r roundResult) {
	d.mu.Lock()
	ch, ok := d.waiters[height]
	delete(d.waiters, height)
	d.mu.Unlock()
	if ok {
		ch <- r
	}
}

func (d *Driver) removeWaiter(height uint64, ch chan roundResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.waiters[height] == ch {
		delete(d.waiters, height)
	}
}
