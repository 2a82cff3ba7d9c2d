// Package configs 内置环境配置
package configs

import (
	_ "embed"
	"fmt"
)

//go:embed development/config.json
var developmentConfig []byte

//go:embed testing/config.json
var testingConfig []byte

// Get 按环境名返回内置配置：development | testing
func Get(env string) ([]byte, error) {
	switch env {
	case "", "development":
		return developmentConfig, nil
	case "testing":
		return testingConfig, nil
	default:
		return nil, fmt.Errorf("未知环境: %s", env)
	}
}
