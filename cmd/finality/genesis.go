package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	genesisconfig "github.com/weisyn/finality/internal/config/genesis"
	"github.com/weisyn/finality/internal/core/blockchain/block"
	"github.com/weisyn/finality/internal/core/infrastructure/clock"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	clockintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/finality/pkg/types"
)

var genesisFlags struct {
	PeersFile string
	Out       string
	Seed      string
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "生成并签名创世区块",
	Long: `读取空白分隔的节点地址，生成创世区块：
  - 一笔创世交易，每个地址一条 add_peer 命令
  - 交易与区块均由 --seed 派生的密钥签名
未指定 --peers 时使用配置文件中的 genesis 节点。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		peers, err := resolveGenesisPeers(genesisFlags.PeersFile)
		if err != nil {
			return err
		}
		kp, err := signature.NewKeyPairFromSeed([]byte(genesisFlags.Seed))
		if err != nil {
			return err
		}

		genesis, err := buildSignedGenesis(peers, kp, clock.NewSystemClock())
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(genesis, "", "  ")
		if err != nil {
			return fmt.Errorf("编码创世区块失败: %w", err)
		}

		if genesisFlags.Out == "-" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		if err := os.WriteFile(genesisFlags.Out, data, 0o644); err != nil {
			return fmt.Errorf("写入创世区块失败: %w", err)
		}
		pterm.Success.Printfln("创世区块已写入 %s", genesisFlags.Out)
		return pterm.DefaultTable.WithHasHeader(false).WithData(pterm.TableData{
			{"哈希", genesis.Hash.Hex()},
			{"节点数", fmt.Sprint(len(peers))},
			{"签名公钥", kp.PublicKey().Base58()},
		}).Render()
	},
}

// resolveGenesisPeers --peers 优先，否则取配置中的创世节点
func resolveGenesisPeers(peersFile string) ([]string, error) {
	if peersFile != "" {
		return genesisconfig.ReadPeersFile(peersFile)
	}
	appConfig, err := loadAppConfig()
	if err != nil {
		return nil, err
	}
	peers, err := genesisconfig.New(appConfig.Genesis).ResolvePeers()
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return nil, errors.New("未指定节点：使用 --peers 或在配置中设置 genesis.peers")
	}
	return peers, nil
}

// buildSignedGenesis 生成创世区块并签名创世交易与区块
//
// 区块哈希覆盖交易签名，交易签名后重新计算区块哈希，再附加区块签名。
func buildSignedGenesis(peers []string, kp *signature.KeyPair, clk clockintf.Clock) (*types.Block, error) {
	hasher := hash.NewHashService()
	genesis, err := block.NewGenerator(hasher, nil, nil, clk, nil).GenerateGenesisBlock(peers)
	if err != nil {
		return nil, err
	}

	ts := clk.Now().UnixMilli()
	signature.SignTransaction(kp, hasher, genesis.Transactions[0], ts)
	genesis.Hash = hasher.HashBlock(genesis)
	return signature.SignBlock(kp, genesis, ts), nil
}

func init() {
	genesisCmd.Flags().StringVar(&genesisFlags.PeersFile, "peers", "", "节点地址文件（空白分隔）")
	genesisCmd.Flags().StringVarP(&genesisFlags.Out, "out", "o", "genesis.block", "输出文件，- 表示标准输出")
	genesisCmd.Flags().StringVar(&genesisFlags.Seed, "seed", "42", "签名密钥种子")
}
