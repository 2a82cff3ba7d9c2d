package main

import (
	"encoding/hex"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
)

var keygenSeed string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "生成 Ed25519 密钥对",
	Long:  "未指定 --seed 时随机生成；相同种子总是得到相同密钥对。",
	RunE: func(cmd *cobra.Command, args []string) error {
		kp, err := newKeyPair(keygenSeed)
		if err != nil {
			return err
		}
		pub := kp.PublicKey()

		pterm.DefaultSection.Println("Ed25519 密钥对")
		return pterm.DefaultTable.WithHasHeader(false).WithData(pterm.TableData{
			{"私钥种子", hex.EncodeToString(kp.PrivateSeed())},
			{"公钥", pub.Hex()},
			{"公钥(base58)", pub.Base58()},
		}).Render()
	},
}

// newKeyPair 种子为空时随机生成
func newKeyPair(seed string) (*signature.KeyPair, error) {
	if seed == "" {
		return signature.GenerateKeyPair()
	}
	return signature.NewKeyPairFromSeed([]byte(seed))
}

func init() {
	keygenCmd.Flags().StringVar(&keygenSeed, "seed", "", "确定性派生种子")
}
