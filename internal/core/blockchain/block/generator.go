// Package block 区块与创世区块构建
package block

import (
	"fmt"

	"github.com/weisyn/finality/internal/core/infrastructure/clock"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	clockintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/types"
)

var _ blockintf.BlockGenerator = (*Generator)(nil)

// Generator 区块构建器
//
// 产出的区块已计算 MerkleRoot 与 Hash，未签名。构建器无状态，可并发调用。
type Generator struct {
	hasher cryptointf.HashProvider
	merkle cryptointf.MerkleCalculator
	txGen  blockintf.TransactionGenerator
	clock  clockintf.Clock
	logger logintf.Logger
}

// NewGenerator 创建区块构建器
//
// 参数为 nil 时使用默认实现：SHA3 哈希、二叉 Merkle、系统时钟。
func NewGenerator(
	hasher cryptointf.HashProvider,
	merkleCalc cryptointf.MerkleCalculator,
	txGen blockintf.TransactionGenerator,
	clk clockintf.Clock,
	logger logintf.Logger,
) *Generator {
	if hasher == nil {
		hasher = hash.NewHashService()
	}
	if merkleCalc == nil {
		merkleCalc = merkle.NewCalculator(hasher)
	}
	if txGen == nil {
		txGen = NewTransactionGenerator()
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Generator{
		hasher: hasher,
		merkle: merkleCalc,
		txGen:  txGen,
		clock:  clk,
		logger: log.NewModuleLogger(logger, "block"),
	}
}

// GenerateGenesisBlock 构建创世区块
//
// 高度 1，前一哈希全零，仅包含一笔创世交易，MerkleRoot 为该交易的内容哈希。
//
// 返回:
//   - error: peers 为空或含无效地址时包装 types.ErrInvalidGenesisInput
func (g *Generator) GenerateGenesisBlock(peers []string) (*types.Block, error) {
	g.logger.Infof("开始构建创世区块: peers=%d", len(peers))

	createdTs := g.clock.Now().UnixMilli()
	tx, err := g.txGen.GenerateGenesisTransaction(createdTs, peers)
	if err != nil {
		return nil, err
	}

	txs := []*types.Transaction{tx}
	block := &types.Block{
		Height:       types.GenesisHeight,
		PrevHash:     types.ZeroHash,
		MerkleRoot:   g.merkle.TransactionsRoot(txs),
		CreatedTs:    createdTs,
		TxsNumber:    uint32(len(txs)),
		Transactions: txs,
	}
	block.Hash = g.hasher.HashBlock(block)

	g.logger.Infof("创世区块构建完成: hash=%s merkle=%s", block.Hash.Short(), block.MerkleRoot.Short())
	return block, nil
}

// GenerateBlock 在 previous 之上构建下一个区块
//
// previous.Hash 为零值时由载荷重新计算；非零时必须与重新计算的哈希一致。
// 高度校验由调用方负责，这里只按 previous.Height+1 编号。
func (g *Generator) GenerateBlock(previous *types.Block, verified *types.VerifiedProposal) (*types.Block, error) {
	if previous == nil {
		return nil, fmt.Errorf("%w: 上一区块为空", types.ErrPreviousBlockUnavailable)
	}
	if verified == nil {
		return nil, fmt.Errorf("已验证提案为空")
	}

	prevHash, err := g.previousHash(previous)
	if err != nil {
		return nil, err
	}

	txs := append([]*types.Transaction(nil), verified.Transactions...)
	block := &types.Block{
		Height:       previous.Height + 1,
		PrevHash:     prevHash,
		MerkleRoot:   g.merkle.TransactionsRoot(txs),
		CreatedTs:    g.clock.Now().UnixMilli(),
		TxsNumber:    uint32(len(txs)),
		Transactions: txs,
	}
	block.Hash = g.hasher.HashBlock(block)

	g.logger.Debugf("区块构建完成: height=%d hash=%s prev=%s txs=%d",
		block.Height, block.Hash.Short(), block.PrevHash.Short(), block.TxsNumber)
	return block, nil
}

func (g *Generator) previousHash(previous *types.Block) (types.Hash, error) {
	computed := g.hasher.HashBlock(previous)
	if previous.Hash.IsZero() {
		return computed, nil
	}
	if previous.Hash != computed {
		return types.Hash{}, fmt.Errorf("%w: 上一区块 height=%d 存储哈希 %s 与载荷哈希 %s 不一致",
			types.ErrBlockLinkage, previous.Height, previous.Hash.Short(), computed.Short())
	}
	return previous.Hash, nil
}
