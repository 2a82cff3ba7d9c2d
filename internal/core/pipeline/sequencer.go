package pipeline

import (
	"sync"

	clockintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/finality/pkg/types"
)

// defaultMaxBatch 单个提案的默认最大交易数
const defaultMaxBatch = 256

// Sequencer 单节点排序器
//
// 按提交顺序把交易分批，每批编号为一个递增高度的提案。
type Sequencer struct {
	clock    clockintf.Clock
	maxBatch int

	mu         sync.Mutex
	queue      []*types.Transaction
	nextHeight uint64
}

// NewSequencer 创建排序器，nextHeight 为下一提案高度，maxBatch<=0 使用默认值
func NewSequencer(nextHeight uint64, maxBatch int, clk clockintf.Clock) *Sequencer {
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}
	return &Sequencer{clock: clk, maxBatch: maxBatch, nextHeight: nextHeight}
}

// Add 追加交易，nil 被忽略
func (s *Sequencer) Add(txs ...*types.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range txs {
		if tx != nil {
			s.queue = append(s.queue, tx)
		}
	}
}

// Pending 待排序交易数
func (s *Sequencer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// NextHeight 下一提案高度
func (s *Sequencer) NextHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextHeight
}

// Next 取出下一批交易组成提案，队列为空时返回 false
func (s *Sequencer) Next() (*types.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return nil, false
	}
	n := len(s.queue)
	if n > s.maxBatch {
		n = s.maxBatch
	}
	batch := make([]*types.Transaction, n)
	copy(batch, s.queue[:n])
	s.queue = s.queue[n:]

	p := &types.Proposal{
		Height:       s.nextHeight,
		CreatedTs:    s.clock.Now().UnixMilli(),
		Transactions: batch,
	}
	s.nextHeight++
	return p, true
}

// Requeue 轮次失败后放回提案，高度回退到该提案
//
// 只能放回最近取出的提案，否则返回 false。
func (s *Sequencer) Requeue(p *types.Proposal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p == nil || p.Height+1 != s.nextHeight {
		return false
	}
	s.queue = append(append([]*types.Transaction(nil), p.Transactions...), s.queue...)
	s.nextHeight = p.Height
	return true
}
