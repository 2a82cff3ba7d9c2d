package block

import (
	"fmt"
	"strings"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	"github.com/weisyn/finality/pkg/types"
)

var _ blockintf.TransactionGenerator = (*TransactionGenerator)(nil)

const (
	// GenesisCreatorAccountID 创世交易的创建账户
	GenesisCreatorAccountID = "admin@genesis"
	// GenesisTxCounter 创世交易计数
	GenesisTxCounter uint64 = 1
)

// TransactionGenerator 系统交易生成
type TransactionGenerator struct{}

// NewTransactionGenerator 创建交易生成器
func NewTransactionGenerator() *TransactionGenerator {
	return &TransactionGenerator{}
}

// GenerateGenesisTransaction 创世交易：每个节点地址一条 AddPeer 命令
//
// 节点公钥由地址确定性派生，所有副本对相同地址列表得到相同交易。
func (g *TransactionGenerator) GenerateGenesisTransaction(createdTs int64, peers []string) (*types.Transaction, error) {
	if len(peers) == 0 {
		return nil, fmt.Errorf("%w: 节点列表为空", types.ErrInvalidGenesisInput)
	}

	tx := &types.Transaction{
		CreatorAccountID: GenesisCreatorAccountID,
		TxCounter:        GenesisTxCounter,
		CreatedTs:        createdTs,
		Commands:         make([]types.Command, 0, len(peers)),
	}
	seen := make(map[string]struct{}, len(peers))
	for i, address := range peers {
		address = strings.TrimSpace(address)
		if address == "" {
			return nil, fmt.Errorf("%w: 第 %d 个节点地址为空", types.ErrInvalidGenesisInput, i)
		}
		if _, dup := seen[address]; dup {
			return nil, fmt.Errorf("%w: 节点地址重复 %s", types.ErrInvalidGenesisInput, address)
		}
		seen[address] = struct{}{}

		tx.Commands = append(tx.Commands, types.NewAddPeerCommand(types.AddPeer{
			Address: address,
			PeerKey: PeerKeyForAddress(address),
		}))
	}
	return tx, nil
}

// PeerKeyForAddress 由节点地址派生的公钥
func PeerKeyForAddress(address string) types.PublicKey {
	return signature.MustKeyPairFromSeed("peer:" + address).PublicKey()
}
