package validation

import (
	"go.uber.org/fx"

	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	validationintf "github.com/weisyn/finality/pkg/interfaces/validation"
)

// ModuleInput 验证模块依赖
type ModuleInput struct {
	fx.In

	SignatureVerifier cryptointf.SignatureVerifier
	HashProvider      cryptointf.HashProvider
	Logger            logintf.Logger `optional:"true"`
}

// Module 返回验证模块
func Module() fx.Option {
	return fx.Module("validation",
		fx.Provide(func(input ModuleInput) validationintf.StatefulValidator {
			return New(input.SignatureVerifier, input.HashProvider, input.Logger)
		}),
	)
}
