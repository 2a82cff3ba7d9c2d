// Package ledger 提供基于 BadgerDB 的账本：临时快照、区块查询与提交
package ledger

import (
	"go.uber.org/fx"

	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/finality/pkg/interfaces/infrastructure/writegate"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
)

// ModuleInput 账本模块依赖
type ModuleInput struct {
	fx.In

	BadgerStore  storage.BadgerStore
	MemoryStore  storage.MemoryStore     `optional:"true"`
	HashProvider cryptointf.HashProvider
	EventBus     event.EventBus          `optional:"true"`
	WriteGate    writegate.WriteGate     `optional:"true"`
	Logger       logintf.Logger          `optional:"true"`
}

// ModuleOutput 账本模块输出
type ModuleOutput struct {
	fx.Out

	TemporaryFactory ledgerintf.TemporaryFactory
	BlockQuery       ledgerintf.BlockQuery
	Committer        ledgerintf.Committer
	QueryService     *QueryService
	LedgerCommitter  *Committer
}

// Module 返回账本模块
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 创建账本服务
func ProvideServices(input ModuleInput) ModuleOutput {
	query := NewQueryService(input.BadgerStore, input.MemoryStore, input.Logger)
	committer := NewCommitter(input.BadgerStore, input.MemoryStore, input.HashProvider, input.EventBus, input.Logger).
		WithWriteGate(input.WriteGate)
	return ModuleOutput{
		TemporaryFactory: NewSnapshotFactory(input.BadgerStore, input.Logger),
		BlockQuery:       query,
		Committer:        committer,
		QueryService:     query,
		LedgerCommitter:  committer,
	}
}
