package clock

import (
	"fmt"
	"time"

	"go.uber.org/fx"

	clockconfig "github.com/weisyn/finality/internal/config/clock"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/config"
	infraClock "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
)

// ModuleParams 时钟模块依赖
type ModuleParams struct {
	fx.In

	Provider config.Provider
	Logger   logintf.Logger `optional:"true"`
}

// Module 返回时钟模块
func Module() fx.Option {
	return fx.Module("clock",
		fx.Provide(ProvideClock),
	)
}

// ProvideClock 按配置选择时钟实现
func ProvideClock(params ModuleParams) (infraClock.Clock, error) {
	return NewFromOptions(params.Provider.GetClock(), log.NewModuleLogger(params.Logger, "clock"))
}

// NewFromOptions 按时钟类型创建实现
//
// ntp 时钟会向默认注册表注册偏移与健康指标。
func NewFromOptions(opts *clockconfig.ClockOptions, logger logintf.Logger) (infraClock.Clock, error) {
	if opts == nil {
		opts = clockconfig.New(nil).GetOptions()
	}
	logger = log.NewModuleLogger(logger, "clock")

	switch opts.Type {
	case "", clockconfig.TypeSystem:
		return NewSystemClock(), nil
	case clockconfig.TypeDeterministic:
		return NewDeterministicClock(time.Unix(opts.DeterministicBaseUnix, 0)), nil
	case clockconfig.TypeNTP:
		c := NewNTPClock(opts.NTPServer, opts.SyncInterval, opts.BackoffInitial, opts.BackoffMax)
		if healthy, _, _, err := c.Health(); !healthy {
			logger.Warnf("NTP初始同步失败，使用本地时间: server=%s err=%v", opts.NTPServer, err)
		}
		if err := RegisterClockMetrics(nil, c.Health); err != nil {
			logger.Warnf("注册时钟指标失败: %v", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("未知时钟类型: %s", opts.Type)
	}
}
