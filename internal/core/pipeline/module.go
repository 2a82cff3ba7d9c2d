package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	blockintf "github.com/weisyn/finality/pkg/interfaces/block"
	"github.com/weisyn/finality/pkg/interfaces/config"
	clockintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	simulatorintf "github.com/weisyn/finality/pkg/interfaces/simulator"
)

// ModuleInput 流水线模块依赖
type ModuleInput struct {
	fx.In

	Provider       config.Provider
	Simulator      simulatorintf.Simulator
	Committer      ledgerintf.Committer
	BlockQuery     ledgerintf.BlockQuery
	BlockGenerator blockintf.BlockGenerator
	Clock          clockintf.Clock
	Logger         logintf.Logger `optional:"true"`
	Lifecycle      fx.Lifecycle
}

// Module 返回流水线模块
func Module() fx.Option {
	return fx.Module("pipeline",
		fx.Provide(ProvideDriver),
	)
}

// ProvideDriver 创建驱动
//
// 启动时订阅模拟器流；配置了创世节点且账本为空时提交创世区块。
func ProvideDriver(input ModuleInput) (*Driver, error) {
	signer, err := signature.NewKeyPairFromSeed([]byte(input.Provider.GetNode().KeySeed))
	if err != nil {
		return nil, fmt.Errorf("派生节点密钥失败: %w", err)
	}
	driver := NewDriver(input.Simulator, input.Committer, input.BlockQuery, signer, input.Clock, input.Logger)

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := driver.Start(); err != nil {
				return err
			}
			peers, err := input.Provider.GetGenesis().ResolvePeers()
			if err != nil {
				return err
			}
			if len(peers) == 0 {
				driver.logger.Warn("未配置创世节点，等待外部提交创世区块")
				return nil
			}
			_, err = driver.Bootstrap(ctx, input.BlockGenerator, peers)
			return err
		},
		OnStop: func(context.Context) error {
			driver.Stop()
			return nil
		},
	})
	return driver, nil
}
