package writegate

import (
	"go.uber.org/fx"

	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	wgif "github.com/weisyn/finality/pkg/interfaces/infrastructure/writegate"
)

// ModuleInput 写门闸模块依赖
type ModuleInput struct {
	fx.In

	Logger logintf.Logger `optional:"true"`
}

// ModuleOutput 写门闸模块输出
type ModuleOutput struct {
	fx.Out

	WriteGate wgif.WriteGate
}

// Module 返回写门闸模块
func Module() fx.Option {
	return fx.Module("writegate",
		fx.Provide(ProvideWriteGate),
	)
}

// ProvideWriteGate 提供写门闸实例
func ProvideWriteGate(input ModuleInput) ModuleOutput {
	return ModuleOutput{WriteGate: New(input.Logger)}
}
