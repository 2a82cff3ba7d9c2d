// Package types 定义区块定案核心使用的数据类型
//
// 包含定长字节类型（哈希、签名、公钥）、交易、提案、区块以及错误分类。
// 定长类型的构造函数严格校验长度，JSON 中统一以十六进制文本表示。
package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// 定长字节长度
const (
	HashLength      = 32 // SHA3-256 摘要长度
	SignatureLength = 64 // Ed25519 签名长度
	PublicKeyLength = 32 // Ed25519 公钥长度
)

// Hash 32 字节内容哈希
type Hash [HashLength]byte

// ZeroHash 全零哈希，创世区块的 prev_hash 与空交易列表的 Merkle 根
var ZeroHash Hash

// HashFromBytes 从变长输入构造哈希，长度必须恰好为 32
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLength {
		return h, fmt.Errorf("%w: hash 需要 %d 字节，实际 %d", ErrInvalidLength, HashLength, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex 从十六进制字符串构造哈希（可带 0x 前缀）
func HashFromHex(s string) (Hash, error) {
	b, err := decodeHex(s)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(b)
}

// MustHashFromHex 仅用于可信常量
func MustHashFromHex(s string) Hash {
	h, err := HashFromHex(s)
	if err != nil {
		panic(err)
	}
	return h
}

// Bytes 返回副本
func (h Hash) Bytes() []byte {
	out := make([]byte, HashLength)
	copy(out, h[:])
	return out
}

// Hex 返回小写十六进制
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// Short 返回前 8 个十六进制字符，用于日志
func (h Hash) Short() string { return h.Hex()[:8] }

// IsZero 是否为全零哈希
func (h Hash) IsZero() bool { return h == ZeroHash }

// MarshalText 实现 encoding.TextMarshaler
func (h Hash) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText 实现 encoding.TextUnmarshaler
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// SignatureBytes 64 字节 Ed25519 签名
type SignatureBytes [SignatureLength]byte

// SignatureFromBytes 从变长输入构造签名，长度必须恰好为 64
func SignatureFromBytes(b []byte) (SignatureBytes, error) {
	var s SignatureBytes
	if len(b) != SignatureLength {
		return s, fmt.Errorf("%w: signature 需要 %d 字节，实际 %d", ErrInvalidLength, SignatureLength, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// SignatureFromHex 从十六进制字符串构造签名
func SignatureFromHex(s string) (SignatureBytes, error) {
	b, err := decodeHex(s)
	if err != nil {
		return SignatureBytes{}, err
	}
	return SignatureFromBytes(b)
}

// Bytes 返回副本
func (s SignatureBytes) Bytes() []byte {
	out := make([]byte, SignatureLength)
	copy(out, s[:])
	return out
}

func (s SignatureBytes) Hex() string    { return hex.EncodeToString(s[:]) }
func (s SignatureBytes) String() string { return s.Hex() }

func (s SignatureBytes) MarshalText() ([]byte, error) { return []byte(s.Hex()), nil }

func (s *SignatureBytes) UnmarshalText(text []byte) error {
	parsed, err := SignatureFromHex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// PublicKey 32 字节 Ed25519 公钥
type PublicKey [PublicKeyLength]byte

// PublicKeyFromBytes 从变长输入构造公钥，长度必须恰好为 32
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var pk PublicKey
	if len(b) != PublicKeyLength {
		return pk, fmt.Errorf("%w: public key 需要 %d 字节，实际 %d", ErrInvalidLength, PublicKeyLength, len(b))
	}
	copy(pk[:], b)
	return pk, nil
}

// PublicKeyFromHex 从十六进制字符串构造公钥
func PublicKeyFromHex(s string) (PublicKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKeyFromBytes(b)
}

// PublicKeyFromBase58 从 base58 文本构造公钥
func PublicKeyFromBase58(s string) (PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("base58 解码失败: %w", err)
	}
	return PublicKeyFromBytes(b)
}

// Bytes 返回副本
func (pk PublicKey) Bytes() []byte {
	out := make([]byte, PublicKeyLength)
	copy(out, pk[:])
	return out
}

func (pk PublicKey) Hex() string { return hex.EncodeToString(pk[:]) }

// Base58 用于 CLI 与日志展示
func (pk PublicKey) Base58() string { return base58.Encode(pk[:]) }

func (pk PublicKey) String() string { return pk.Hex() }

func (pk PublicKey) MarshalText() ([]byte, error) { return []byte(pk.Hex()), nil }

func (pk *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := PublicKeyFromHex(string(text))
	if err != nil {
		return err
	}
	*pk = parsed
	return nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("十六进制解码失败: %w", err)
	}
	return b, nil
}
