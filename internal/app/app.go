// Package app 装配并运行定案节点
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/weisyn/finality/internal/config"
	"github.com/weisyn/finality/internal/core/pipeline"
	"github.com/weisyn/finality/internal/core/simulator"
	ledgerintf "github.com/weisyn/finality/pkg/interfaces/ledger"
	"github.com/weisyn/finality/pkg/types"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// App 应用对外接口
type App interface {
	// Stop 停止应用，关闭流与存储
	Stop() error

	// Wait 阻塞直到收到退出信号，然后停止应用
	Wait()

	Driver() *pipeline.Driver

	Simulator() *simulator.Simulator

	BlockQuery() ledgerintf.BlockQuery
}

type internalApp struct {
	bootstrap *Bootstrap
}

// Start 装配并启动应用
func Start(appOptions ...Option) (App, error) {
	bootstrap := NewBootstrap(newOptions(appOptions...))
	if err := bootstrap.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}

func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

func (a *internalApp) Wait() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signals
	a.bootstrap.logger.Infof("收到信号 %v，正在退出", sig)

	if err := a.Stop(); err != nil {
		a.bootstrap.logger.Errorf("停止应用出错: %v", err)
	}
}

func (a *internalApp) Driver() *pipeline.Driver { return a.bootstrap.driver }

func (a *internalApp) Simulator() *simulator.Simulator { return a.bootstrap.simulator }

func (a *internalApp) BlockQuery() ledgerintf.BlockQuery { return a.bootstrap.query }

// resolve 加载配置文件并应用覆盖项
func (o *options) resolve() error {
	if o.appConfig == nil {
		if o.configFilePath != "" {
			loaded, err := config.LoadAppConfig(o.configFilePath)
			if err != nil {
				return err
			}
			o.appConfig = loaded
		} else {
			o.appConfig = &types.AppConfig{}
		}
	}
	for _, fn := range o.overrides {
		fn(o.appConfig)
	}
	return nil
}
