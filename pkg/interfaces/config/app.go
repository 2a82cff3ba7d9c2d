// Package config provides application configuration interfaces.
package config

import "github.com/weisyn/finality/pkg/types"

// AppOptions 应用配置来源
type AppOptions interface {
	// GetAppConfig 获取应用配置
	GetAppConfig() *types.AppConfig
}
