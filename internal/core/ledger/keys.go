package ledger

import (
	"encoding/binary"
	"fmt"

	"github.com/weisyn/finality/pkg/types"
)

// 键空间
//
//	blocks:height:{020d}         → 区块编码（JSON + snappy）
//	indices:hash:{hex}           → 高度（8 字节大端）
//	state:chain:tip              → 最高已提交高度（8 字节大端）
//	state:account:counter:{id}   → 账户交易计数（8 字节大端）
//	state:peer:{hex}             → AddPeer（JSON）
const (
	tipKey            = "state:chain:tip"
	accountCounterPfx = "state:account:counter:"
	peerPfx           = "state:peer:"
)

func blockHeightKey(height uint64) []byte {
	return []byte(fmt.Sprintf("blocks:height:%020d", height))
}

func blockHashKey(hash types.Hash) []byte {
	return []byte(fmt.Sprintf("indices:hash:%x", hash[:]))
}

func accountCounterKey(accountID string) []byte {
	return []byte(accountCounterPfx + accountID)
}

func peerKey(key types.PublicKey) []byte {
	return []byte(fmt.Sprintf("%s%x", peerPfx, key[:]))
}

// cacheKey 内存缓存中区块编码的键
func cacheKey(height uint64) string {
	return fmt.Sprintf("block:%d", height)
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: uint64 需要 8 字节，实际 %d", types.ErrInvalidLength, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
