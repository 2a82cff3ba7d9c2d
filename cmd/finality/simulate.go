package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/finality/internal/app"
	"github.com/weisyn/finality/internal/core/infrastructure/clock"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/finality/internal/core/pipeline"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/finality/pkg/types"
)

var simulateFlags struct {
	Rounds int
	Txs    int
	Peers  []string
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "在内存账本上运行若干轮模拟",
	Long: `启动完整流水线（内存 BadgerDB），提交创世区块后运行 --rounds 轮，
每轮 --txs 笔签名交易；第二轮起每轮重放上一轮的第一笔交易，由验证器拒绝。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateFlags.Rounds <= 0 || simulateFlags.Txs < 0 {
			return errors.New("--rounds 必须大于 0，--txs 不能为负")
		}
		appConfig, err := loadAppConfig()
		if err != nil {
			return err
		}

		application, err := app.Start(
			app.WithAppConfig(appConfig),
			app.WithInMemoryStorage(),
			app.WithGenesisPeers(simulateFlags.Peers),
			app.WithLogLevel(globalFlags.LogLevel),
		)
		if err != nil {
			return err
		}
		defer func() {
			if err := application.Stop(); err != nil {
				pterm.Warning.Printfln("停止应用出错: %v", err)
			}
		}()

		ctx := context.Background()
		top, err := application.BlockQuery().GetTopHeight(ctx)
		if err != nil {
			return err
		}

		seq := pipeline.NewSequencer(top+1, simulateFlags.Txs+1, clock.NewSystemClock())
		feeder := newTxFeeder(hash.NewHashService())
		spinner, _ := pterm.DefaultSpinner.Start("运行模拟轮次")

		var blocks []*types.Block
		for round := 1; round <= simulateFlags.Rounds; round++ {
			seq.Add(feeder.round(round, simulateFlags.Txs)...)
			produced, err := application.Driver().Drain(ctx, seq)
			blocks = append(blocks, produced...)
			if err != nil {
				spinner.Fail(fmt.Sprintf("第 %d 轮失败", round))
				return err
			}
		}
		spinner.Success(fmt.Sprintf("完成 %d 轮", simulateFlags.Rounds))

		return renderChain(ctx, application, blocks)
	},
}

// txFeeder 生成每轮的签名交易
type txFeeder struct {
	hasher cryptointf.HashProvider
	last   *types.Transaction
}

func newTxFeeder(hasher cryptointf.HashProvider) *txFeeder {
	return &txFeeder{hasher: hasher}
}

// round 第 round 轮的交易，账户计数等于轮次；附带上一轮首笔交易的重放
func (f *txFeeder) round(round, n int) []*types.Transaction {
	txs := make([]*types.Transaction, 0, n+1)
	for i := 0; i < n; i++ {
		account := fmt.Sprintf("user%d@sim", i)
		tx := &types.Transaction{
			CreatorAccountID: account,
			TxCounter:        uint64(round),
			CreatedTs:        int64(round),
		}
		signature.SignTransaction(signature.MustKeyPairFromSeed(account), f.hasher, tx, int64(round))
		txs = append(txs, tx)
	}
	if f.last != nil {
		txs = append(txs, f.last)
	}
	if len(txs) > 0 {
		f.last = txs[0]
	}
	return txs
}

func renderChain(ctx context.Context, application app.App, blocks []*types.Block) error {
	genesis, err := application.BlockQuery().GetBlockByHeight(ctx, types.GenesisHeight)
	if err != nil {
		return err
	}

	data := pterm.TableData{{"高度", "哈希", "前一哈希", "Merkle根", "交易数", "签名者"}}
	for _, b := range append([]*types.Block{genesis}, blocks...) {
		signer := "-"
		if len(b.Signatures) > 0 {
			signer = b.Signatures[0].PublicKey.Base58()
		}
		data = append(data, []string{
			fmt.Sprint(b.Height),
			b.Hash.Short(),
			b.PrevHash.Short(),
			b.MerkleRoot.Short(),
			fmt.Sprint(b.TxsNumber),
			signer,
		})
	}

	pterm.DefaultSection.Println("已提交区块")
	if err := pterm.DefaultTable.WithHasHeader(true).WithData(data).Render(); err != nil {
		return err
	}

	peers, err := application.BlockQuery().GetPeers(ctx)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("已注册节点 %d 个", len(peers))
	return nil
}

func init() {
	simulateCmd.Flags().IntVar(&simulateFlags.Rounds, "rounds", 3, "模拟轮数")
	simulateCmd.Flags().IntVar(&simulateFlags.Txs, "txs", 3, "每轮交易数")
	simulateCmd.Flags().StringSliceVar(&simulateFlags.Peers, "peers", []string{"127.0.0.1:10001"}, "创世节点地址")
}
