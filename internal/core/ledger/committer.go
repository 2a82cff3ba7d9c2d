package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/weisyn/finality/internal/core/infrastructure/log"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/writegate"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	"github.com/weisyn/finality/pkg/types"
)

var _ ledgerintf.Committer = (*Committer)(nil)

// Committer 区块持久化提交
//
// 一个 BadgerDB 事务内完成：链接校验、状态变更、区块与索引写入、链顶推进。
type Committer struct {
	store  storage.BadgerStore
	cache  storage.MemoryStore
	hasher cryptointf.HashProvider
	bus    event.EventBus
	gate   writegate.WriteGate
	logger logintf.Logger
}

// NewCommitter 创建提交器，cache 与 bus 可为 nil
func NewCommitter(store storage.BadgerStore, cache storage.MemoryStore, hasher cryptointf.HashProvider, bus event.EventBus, logger logintf.Logger) *Committer {
	return &Committer{
		store:  store,
		cache:  cache,
		hasher: hasher,
		bus:    bus,
		logger: log.NewModuleLogger(logger, "ledger"),
	}
}

// WithWriteGate 设置写门闸
//
// 设置后每次提交前检查门闸，存储层失败时账本进入只读。
func (c *Committer) WithWriteGate(gate writegate.WriteGate) *Committer {
	c.gate = gate
	return c
}

// CommitBlock 校验链接关系后原子写入区块
//
// 参数:
//   - block: 待提交区块，Hash 必须与载荷重新计算的哈希一致
//
// 返回:
//   - error: 链接不满足时包装 types.ErrBlockLinkage
func (c *Committer) CommitBlock(ctx context.Context, block *types.Block) error {
	if block == nil {
		return fmt.Errorf("%w: 区块为空", types.ErrBlockLinkage)
	}
	if computed := c.hasher.HashBlock(block); computed != block.Hash {
		return fmt.Errorf("%w: 区块哈希与载荷不一致 height=%d stored=%s computed=%s",
			types.ErrBlockLinkage, block.Height, block.Hash.Short(), computed.Short())
	}
	if int(block.TxsNumber) != len(block.Transactions) {
		return fmt.Errorf("%w: txs_number=%d 与交易数 %d 不一致",
			types.ErrBlockLinkage, block.TxsNumber, len(block.Transactions))
	}

	if c.gate != nil {
		if err := c.gate.AssertWriteAllowed(ctx, "commit_block"); err != nil {
			return err
		}
	}

	encoded, err := encodeBlock(block)
	if err != nil {
		return err
	}

	err = c.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		if err := checkLinkage(tx, block); err != nil {
			return err
		}
		for _, t := range block.Transactions {
			if err := applyTransaction(tx, t); err != nil {
				return err
			}
		}
		if err := tx.Set(blockHeightKey(block.Height), encoded); err != nil {
			return err
		}
		if err := tx.Set(blockHashKey(block.Hash), encodeUint64(block.Height)); err != nil {
			return err
		}
		return tx.Set([]byte(tipKey), encodeUint64(block.Height))
	})
	if err != nil {
		if c.gate != nil && isStorageFailure(err) {
			c.gate.EnterReadOnly(fmt.Sprintf("提交区块失败 height=%d: %v", block.Height, err))
		}
		return fmt.Errorf("提交区块失败: height=%d: %w", block.Height, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey(block.Height), encoded, 0); err != nil {
			c.logger.Debugf("缓存区块失败: height=%d err=%v", block.Height, err)
		}
	}
	c.logger.Infof("区块已提交: height=%d hash=%s txs=%d", block.Height, block.Hash.Short(), block.TxsNumber)

	if c.bus != nil {
		c.bus.Publish(types.EventTypeBlockCommitted, block)
	}
	return nil
}

// EnsureGenesis 空账本时提交创世区块；已有链时校验创世哈希一致
func (c *Committer) EnsureGenesis(ctx context.Context, query ledgerintf.BlockQuery, genesis *types.Block) error {
	if genesis == nil || !genesis.IsGenesis() {
		return fmt.Errorf("%w: 不是创世区块", types.ErrInvalidGenesisInput)
	}
	stored, err := query.GetBlockByHeight(ctx, types.GenesisHeight)
	switch {
	case err == nil:
		if stored.Hash != genesis.Hash {
			return fmt.Errorf("%w: 已存储创世 %s 与配置创世 %s 不一致",
				types.ErrBlockLinkage, stored.Hash.Short(), genesis.Hash.Short())
		}
		return nil
	case errors.Is(err, types.ErrBlockNotFound):
		return c.CommitBlock(ctx, genesis)
	default:
		return err
	}
}

// checkLinkage 空账本只接受创世区块，否则必须紧接链顶
func checkLinkage(tx storage.BadgerTransaction, block *types.Block) error {
	raw, err := tx.Get([]byte(tipKey))
	if err != nil {
		return err
	}
	if raw == nil {
		if block.Height != types.GenesisHeight || !block.PrevHash.IsZero() {
			return fmt.Errorf("%w: 空账本只接受创世区块，得到 height=%d", types.ErrBlockLinkage, block.Height)
		}
		return nil
	}

	top, err := decodeUint64(raw)
	if err != nil {
		return err
	}
	if block.Height != top+1 {
		return fmt.Errorf("%w: 期望高度 %d，得到 %d", types.ErrBlockLinkage, top+1, block.Height)
	}
	prevData, err := tx.Get(blockHeightKey(top))
	if err != nil {
		return err
	}
	if prevData == nil {
		return fmt.Errorf("%w: height=%d", types.ErrBlockNotFound, top)
	}
	prev, err := decodeBlock(prevData)
	if err != nil {
		return err
	}
	if block.PrevHash != prev.Hash {
		return fmt.Errorf("%w: prev_hash=%s 链顶哈希=%s", types.ErrBlockLinkage, block.PrevHash.Short(), prev.Hash.Short())
	}
	return nil
}

// applyTransaction 应用交易的状态变更：账户计数取最大值，注册节点
func applyTransaction(tx storage.BadgerTransaction, t *types.Transaction) error {
	if t == nil {
		return nil
	}
	err := tx.Merge(accountCounterKey(t.CreatorAccountID), encodeUint64(t.TxCounter), func(existing, next []byte) []byte {
		if current, err := decodeUint64(existing); err == nil && current >= t.TxCounter {
			return existing
		}
		return next
	})
	if err != nil {
		return err
	}

	for _, cmd := range t.Commands {
		if cmd.Type != types.CommandAddPeer {
			continue
		}
		peer, err := cmd.DecodeAddPeer()
		if err != nil {
			return fmt.Errorf("解码 add_peer 失败: %w", err)
		}
		value, err := encodePeer(peer)
		if err != nil {
			return err
		}
		if err := tx.Set(peerKey(peer.PeerKey), value); err != nil {
			return err
		}
	}
	return nil
}

// isStorageFailure 链接校验失败与 ctx 结束之外的错误视为存储层故障
func isStorageFailure(err error) bool {
	return !errors.Is(err, types.ErrBlockLinkage) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
