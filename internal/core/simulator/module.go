package simulator

import (
	"context"

	"go.uber.org/fx"

	eventconfig "github.com/weisyn/finality/internal/config/event"
	simulatorconfig "github.com/weisyn/finality/internal/config/simulator"
	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	"github.com/weisyn/finality/pkg/interfaces/config"
	eventintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/event"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	simulatorintf "github.com/weisyn/finality/pkg/interfaces/simulator"
	validationintf "github.com/weisyn/finality/pkg/interfaces/validation"
)

// ModuleInput 模拟器模块依赖
type ModuleInput struct {
	fx.In

	Provider          config.Provider
	TemporaryFactory  ledgerintf.TemporaryFactory
	StatefulValidator validationintf.StatefulValidator
	BlockQuery        ledgerintf.BlockQuery
	BlockGenerator    blockintf.BlockGenerator
	EventBus          eventintf.EventBus
	EventConfig       *eventconfig.Config `optional:"true"`
	Logger            logintf.Logger      `optional:"true"`
	Lifecycle         fx.Lifecycle
}

// ModuleOutput 模拟器模块输出
type ModuleOutput struct {
	fx.Out

	Simulator     simulatorintf.Simulator
	SimulatorImpl *Simulator
}

// Module 返回模拟器模块
func Module() fx.Option {
	return fx.Module("simulator",
		fx.Provide(ProvideSimulator),
	)
}

// ProvideSimulator 创建模拟器，停止时关闭流
func ProvideSimulator(input ModuleInput) (ModuleOutput, error) {
	sim, err := New(
		input.TemporaryFactory,
		input.StatefulValidator,
		input.BlockQuery,
		input.BlockGenerator,
		input.EventBus,
		input.EventConfig,
		simulatorconfig.NewFromOptions(input.Provider.GetSimulator()),
		input.Logger,
	)
	if err != nil {
		return ModuleOutput{}, err
	}

	input.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return sim.Close()
		},
	})
	return ModuleOutput{Simulator: sim, SimulatorImpl: sim}, nil
}
