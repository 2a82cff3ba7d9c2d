// Package version 构建版本信息
package version

import (
	"fmt"
	"runtime"
)

// 构建时通过 ldflags 注入
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// BuildInfo 构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetBuildInfo 获取构建信息
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// GetFullVersion 多行版本描述
func GetFullVersion() string {
	info := GetBuildInfo()
	return fmt.Sprintf("finality %s\n构建时间: %s\n提交: %s\nGo版本: %s\n平台: %s",
		info.Version, info.BuildTime, info.GitCommit, info.GoVersion, info.Platform)
}
