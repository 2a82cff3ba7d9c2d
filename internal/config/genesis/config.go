// Package genesis 创世配置
package genesis

import (
	"fmt"
	"os"
	"strings"

	configtypes "github.com/weisyn/finality/pkg/types"
)

// GenesisOptions 创世配置选项
type GenesisOptions struct {
	Peers     []string `json:"peers"`
	PeersFile string   `json:"peers_file"`
}

// Config 创世配置实现
type Config struct {
	options *GenesisOptions
}

// New 创建创世配置，userConfig 为 *types.UserGenesisConfig 或 nil
func New(userConfig interface{}) *Config {
	opts := &GenesisOptions{}
	if cfg, ok := userConfig.(*configtypes.UserGenesisConfig); ok && cfg != nil {
		opts.Peers = append(opts.Peers, cfg.Peers...)
		if cfg.PeersFile != nil {
			opts.PeersFile = *cfg.PeersFile
		}
	}
	return &Config{options: opts}
}

func (c *Config) GetOptions() *GenesisOptions { return c.options }

// ResolvePeers 合并内联节点与节点文件中的地址
func (c *Config) ResolvePeers() ([]string, error) {
	peers := append([]string(nil), c.options.Peers...)
	if c.options.PeersFile == "" {
		return peers, nil
	}
	filePeers, err := ReadPeersFile(c.options.PeersFile)
	if err != nil {
		return nil, err
	}
	return append(peers, filePeers...), nil
}

// ReadPeersFile 读取空白分隔的节点地址文件
func ReadPeersFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取节点文件失败: %w", err)
	}
	return strings.Fields(string(data)), nil
}
