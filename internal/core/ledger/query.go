package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/weisyn/finality/internal/core/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/finality/pkg/types"
)

var _ ledgerintf.BlockQuery = (*QueryService)(nil)

// QueryService 已提交区块查询
//
// 区块编码按高度缓存在内存存储中；已提交区块不可变，缓存无需失效。
// 每次读取都重新解码，调用方拿到的是独立副本。
type QueryService struct {
	store  storage.BadgerStore
	cache  storage.MemoryStore
	logger logintf.Logger
}

// NewQueryService 创建查询服务，cache 可为 nil
func NewQueryService(store storage.BadgerStore, cache storage.MemoryStore, logger logintf.Logger) *QueryService {
	return &QueryService{store: store, cache: cache, logger: log.NewModuleLogger(logger, "ledger")}
}

// GetTopHeight 最高已提交高度，存储为空时为 0
func (q *QueryService) GetTopHeight(ctx context.Context) (uint64, error) {
	raw, err := q.store.Get(ctx, []byte(tipKey))
	if err != nil {
		return 0, fmt.Errorf("读取链顶高度失败: %w", err)
	}
	if raw == nil {
		return 0, nil
	}
	return decodeUint64(raw)
}

// GetLastBlock 最高已提交区块
func (q *QueryService) GetLastBlock(ctx context.Context) (*types.Block, error) {
	top, err := q.GetTopHeight(ctx)
	if err != nil {
		return nil, err
	}
	if top == 0 {
		return nil, types.ErrBlockNotFound
	}
	return q.GetBlockByHeight(ctx, top)
}

// GetBlockByHeight 按高度读取区块
func (q *QueryService) GetBlockByHeight(ctx context.Context, height uint64) (*types.Block, error) {
	if q.cache != nil {
		if data, ok, err := q.cache.Get(ctx, cacheKey(height)); err == nil && ok {
			if block, err := decodeBlock(data); err == nil {
				return block, nil
			}
		}
	}

	data, err := q.store.Get(ctx, blockHeightKey(height))
	if err != nil {
		return nil, fmt.Errorf("读取区块失败: height=%d: %w", height, err)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: height=%d", types.ErrBlockNotFound, height)
	}
	block, err := decodeBlock(data)
	if err != nil {
		return nil, fmt.Errorf("解码区块失败: height=%d: %w", height, err)
	}

	if q.cache != nil {
		if err := q.cache.Set(ctx, cacheKey(height), data, 0); err != nil {
			q.logger.Debugf("缓存区块失败: height=%d err=%v", height, err)
		}
	}
	return block, nil
}

// GetBlockByHash 按哈希读取区块
func (q *QueryService) GetBlockByHash(ctx context.Context, hash types.Hash) (*types.Block, error) {
	raw, err := q.store.Get(ctx, blockHashKey(hash))
	if err != nil {
		return nil, fmt.Errorf("读取哈希索引失败: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: hash=%s", types.ErrBlockNotFound, hash.Short())
	}
	height, err := decodeUint64(raw)
	if err != nil {
		return nil, err
	}
	return q.GetBlockByHeight(ctx, height)
}

// GetPeers 已注册节点，按地址排序
func (q *QueryService) GetPeers(ctx context.Context) ([]types.AddPeer, error) {
	entries, err := q.store.PrefixScan(ctx, []byte(peerPfx))
	if err != nil {
		return nil, fmt.Errorf("扫描节点失败: %w", err)
	}
	peers := make([]types.AddPeer, 0, len(entries))
	for key, value := range entries {
		peer, err := decodePeer(value)
		if err != nil {
			return nil, fmt.Errorf("解码节点 %s 失败: %w", strings.TrimPrefix(key, peerPfx), err)
		}
		peers = append(peers, peer)
	}
	sort.Slice(peers, func(i, j int) bool {
		if peers[i].Address != peers[j].Address {
			return peers[i].Address < peers[j].Address
		}
		return peers[i].PeerKey.Hex() < peers[j].PeerKey.Hex()
	})
	return peers, nil
}

// IsNotFound 错误是否表示区块不存在
func IsNotFound(err error) bool {
	return errors.Is(err, types.ErrBlockNotFound)
}
