// Package signature 提供 Ed25519 签名校验与签名者
package signature

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	"github.com/weisyn/finality/pkg/types"
)

// 确保实现接口
var (
	_ cryptointf.SignatureVerifier = (*Verifier)(nil)
	_ cryptointf.Signer            = (*KeyPair)(nil)
)

// 错误定义
var (
	ErrEmptySeed = errors.New("签名种子不能为空")
)

// Verifier Ed25519 签名校验服务
//
// 无状态，可并发使用。
type Verifier struct{}

// NewVerifier 创建签名校验服务
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify 校验签名
//
// 参数:
//   - publicKey: 32 字节公钥
//   - signature: 64 字节签名
//   - message: 原始消息
//
// 返回:
//   - bool: 长度错误、畸形输入或不匹配时为 false
func (v *Verifier) Verify(publicKey, signature, message []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// VerifyString 以 UTF-8 字节校验文本消息
func (v *Verifier) VerifyString(publicKey, signature []byte, message string) bool {
	return v.Verify(publicKey, signature, []byte(message))
}

// VerifySignature 校验带公钥的签名
func (v *Verifier) VerifySignature(sig types.Signature, message []byte) bool {
	return v.Verify(sig.PublicKey[:], sig.Signature[:], message)
}

// KeyPair Ed25519 密钥对
type KeyPair struct {
	private ed25519.PrivateKey
	public  types.PublicKey
}

// GenerateKeyPair 随机生成密钥对
func GenerateKeyPair() (*KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("生成 Ed25519 密钥失败: %w", err)
	}
	return newKeyPair(priv), nil
}

// NewKeyPairFromSeed 由任意种子确定性派生密钥对
//
// 种子先经 SHA3-256 压缩为 32 字节再作为 Ed25519 私钥种子。
func NewKeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) == 0 {
		return nil, ErrEmptySeed
	}
	digest := sha3.Sum256(seed)
	return newKeyPair(ed25519.NewKeyFromSeed(digest[:])), nil
}

// MustKeyPairFromSeed 同 NewKeyPairFromSeed，失败时 panic
func MustKeyPairFromSeed(seed string) *KeyPair {
	kp, err := NewKeyPairFromSeed([]byte(seed))
	if err != nil {
		panic(err)
	}
	return kp
}

func newKeyPair(priv ed25519.PrivateKey) *KeyPair {
	kp := &KeyPair{private: priv}
	copy(kp.public[:], priv.Public().(ed25519.PublicKey))
	return kp
}

// PublicKey 公钥
func (k *KeyPair) PublicKey() types.PublicKey {
	return k.public
}

// PrivateSeed 32 字节私钥种子
func (k *KeyPair) PrivateSeed() []byte {
	return k.private.Seed()
}

// Sign 对消息签名
func (k *KeyPair) Sign(message []byte, timestamp int64) types.Signature {
	sig := types.Signature{PublicKey: k.public, Timestamp: timestamp}
	copy(sig.Signature[:], ed25519.Sign(k.private, message))
	return sig
}

// SignTransaction 对交易内容哈希签名并追加到交易签名集合
func SignTransaction(signer cryptointf.Signer, hasher cryptointf.HashProvider, tx *types.Transaction, timestamp int64) types.Signature {
	h := hasher.HashTransaction(tx)
	sig := signer.Sign(h[:], timestamp)
	tx.Signatures = append(tx.Signatures, sig)
	return sig
}

// SignBlock 对区块哈希签名，返回带签名的副本
//
// 已发布的区块被多个订阅者共享，签名总是作用在副本上。
func SignBlock(signer cryptointf.Signer, block *types.Block, timestamp int64) *types.Block {
	signed := block.Clone()
	signed.Signatures = append(signed.Signatures, signer.Sign(block.Hash[:], timestamp))
	return signed
}

// VerifyTransaction 校验交易上的所有签名，至少需要一个签名
func VerifyTransaction(verifier cryptointf.SignatureVerifier, hasher cryptointf.HashProvider, tx *types.Transaction) bool {
	if tx == nil || len(tx.Signatures) == 0 {
		return false
	}
	h := hasher.HashTransaction(tx)
	for _, sig := range tx.Signatures {
		if !verifier.VerifySignature(sig, h[:]) {
			return false
		}
	}
	return true
}
