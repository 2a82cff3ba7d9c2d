package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/weisyn/finality/configs"
	"github.com/weisyn/finality/internal/app/version"
	config "github.com/weisyn/finality/internal/config"
	"github.com/weisyn/finality/pkg/types"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径
	Env        string // 内置环境配置
	LogLevel   string // 日志级别
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "finality",
	Short: "区块定案核心工具",
	Long: `finality - 提案到区块的定案流水线

子命令:
  genesis   根据节点列表生成并签名创世区块
  keygen    生成 Ed25519 密钥对
  simulate  在内存账本上运行若干轮模拟`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
	},
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// loadAppConfig 读取配置
//
// --config 优先，其次 --env 指定的内置配置，都未指定时返回空配置。
func loadAppConfig() (*types.AppConfig, error) {
	if globalFlags.ConfigPath != "" {
		return config.LoadAppConfig(globalFlags.ConfigPath)
	}
	if globalFlags.Env != "" {
		data, err := configs.Get(globalFlags.Env)
		if err != nil {
			return nil, err
		}
		return config.ParseAppConfig(data)
	}
	return &types.AppConfig{}, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "JSON 配置文件路径")
	rootCmd.PersistentFlags().StringVar(&globalFlags.Env, "env", "", "内置环境配置: development|testing")
	rootCmd.PersistentFlags().StringVar(&globalFlags.LogLevel, "log-level", "warn", "日志级别: debug|info|warn|error")

	rootCmd.AddCommand(versionCmd, genesisCmd, keygenCmd, simulateCmd)
}
