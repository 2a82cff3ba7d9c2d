package block

import (
	"go.uber.org/fx"

	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	clockintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
)

// ModuleInput 区块模块依赖
type ModuleInput struct {
	fx.In

	HashProvider     cryptointf.HashProvider
	MerkleCalculator cryptointf.MerkleCalculator
	Clock            clockintf.Clock `optional:"true"`
	Logger           logintf.Logger  `optional:"true"`
}

// ModuleOutput 区块模块输出
type ModuleOutput struct {
	fx.Out

	BlockGenerator       blockintf.BlockGenerator
	TransactionGenerator blockintf.TransactionGenerator
}

// Module 返回区块模块
func Module() fx.Option {
	return fx.Module("block",
		fx.Provide(ProvideGenerators),
	)
}

// ProvideGenerators 创建区块与交易生成器
func ProvideGenerators(input ModuleInput) ModuleOutput {
	txGen := NewTransactionGenerator()
	return ModuleOutput{
		BlockGenerator:       NewGenerator(input.HashProvider, input.MerkleCalculator, txGen, input.Clock, input.Logger),
		TransactionGenerator: txGen,
	}
}
