package crypto

import "github.com/weisyn/finality/pkg/types"

// SignatureVerifier Ed25519 签名校验
//
// 无状态，可被任意并发调用。畸形输入、长度错误与不匹配一律返回 false，不会 panic。
type SignatureVerifier interface {
	Verify(publicKey, signature, message []byte) bool

	// VerifyString 以 UTF-8 字节校验文本消息，结果与字节路径一致
	VerifyString(publicKey, signature []byte, message string) bool

	// VerifySignature 校验带公钥的签名
	VerifySignature(sig types.Signature, message []byte) bool
}

// Signer 持有私钥的签名者
type Signer interface {
	PublicKey() types.PublicKey

	// Sign 对消息签名，timestamp 毫秒
	Sign(message []byte, timestamp int64) types.Signature
}
