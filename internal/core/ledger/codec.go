package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/weisyn/finality/pkg/types"
)

// maxDecodedBlockSize 解压后区块编码上限
const maxDecodedBlockSize = 64 << 20

// encodeBlock 区块存储编码：JSON（定长字段为十六进制）经 snappy 压缩
//
// 存储编码只用于持久化，区块哈希始终基于规范载荷重新计算。
func encodeBlock(block *types.Block) ([]byte, error) {
	raw, err := json.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("序列化区块失败: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

func decodeBlock(data []byte) (*types.Block, error) {
	if n, err := snappy.DecodedLen(data); err == nil && n > maxDecodedBlockSize {
		return nil, fmt.Errorf("区块编码过大: %d > %d", n, maxDecodedBlockSize)
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("解压区块失败: %w", err)
	}
	var block types.Block
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, fmt.Errorf("反序列化区块失败: %w", err)
	}
	return &block, nil
}

func encodePeer(peer types.AddPeer) ([]byte, error) {
	return json.Marshal(peer)
}

func decodePeer(data []byte) (types.AddPeer, error) {
	var peer types.AddPeer
	err := json.Unmarshal(data, &peer)
	return peer, err
}
