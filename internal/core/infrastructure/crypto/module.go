// Package crypto 装配哈希、Merkle 与签名服务
package crypto

import (
	"go.uber.org/fx"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/merkle"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
)

// CryptoParams 定义加密模块的依赖参数
type CryptoParams struct {
	fx.In

	Logger logintf.Logger `optional:"true"`
}

// CryptoOutput 定义加密模块的输出结构
type CryptoOutput struct {
	fx.Out

	HashProvider      cryptointf.HashProvider
	MerkleCalculator  cryptointf.MerkleCalculator
	SignatureVerifier cryptointf.SignatureVerifier
}

// Module 返回加密模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideCryptoServices),
	)
}

// ProvideCryptoServices 提供加密服务
func ProvideCryptoServices(params CryptoParams) CryptoOutput {
	hasher := hash.NewHashService()
	log.NewModuleLogger(params.Logger, "crypto").Debug("加密服务已创建: sha3-256 / ed25519")

	return CryptoOutput{
		HashProvider:      hasher,
		MerkleCalculator:  merkle.NewCalculator(hasher),
		SignatureVerifier: signature.NewVerifier(),
	}
}
