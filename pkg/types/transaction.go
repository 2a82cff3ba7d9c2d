package types

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// CommandType 命令类型
//
// 命令目录不属于定案核心，这里只定义创世交易需要的 AddPeer。
type CommandType string

const (
	// CommandAddPeer 注册一个共识节点
	CommandAddPeer CommandType = "add_peer"
)

// Command 不透明命令，Payload 的解释由 Type 决定
type Command struct {
	Type    CommandType `json:"type"`
	Payload []byte      `json:"payload"`
}

// AddPeer 节点注册命令的载荷
type AddPeer struct {
	Address string    `json:"address"`
	PeerKey PublicKey `json:"peer_key"`
}

// NewAddPeerCommand 编码 AddPeer 载荷
//
// 载荷采用 protobuf wire 格式：1=address(bytes) 2=peer_key(bytes)。
func NewAddPeerCommand(p AddPeer) Command {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, p.Address)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, p.PeerKey[:])
	return Command{Type: CommandAddPeer, Payload: b}
}

// DecodeAddPeer 解码 AddPeer 载荷
func (c Command) DecodeAddPeer() (AddPeer, error) {
	var out AddPeer
	if c.Type != CommandAddPeer {
		return out, fmt.Errorf("命令类型不是 %s: %s", CommandAddPeer, c.Type)
	}
	b := c.Payload
	var seenKey bool
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return out, fmt.Errorf("解析 add_peer 标签失败: %w", protowire.ParseError(n))
		}
		b = b[n:]
		if typ != protowire.BytesType {
			return out, fmt.Errorf("add_peer 字段 %d 类型错误", num)
		}
		v, m := protowire.ConsumeBytes(b)
		if m < 0 {
			return out, fmt.Errorf("解析 add_peer 字段 %d 失败: %w", num, protowire.ParseError(m))
		}
		b = b[m:]
		switch num {
		case 1:
			out.Address = string(v)
		case 2:
			pk, err := PublicKeyFromBytes(v)
			if err != nil {
				return out, err
			}
			out.PeerKey = pk
			seenKey = true
		}
	}
	if out.Address == "" || !seenKey {
		return out, fmt.Errorf("add_peer 载荷不完整")
	}
	return out, nil
}

// Signature 带签名者公钥的签名
type Signature struct {
	PublicKey PublicKey      `json:"public_key"`
	Signature SignatureBytes `json:"signature"`
	Timestamp int64          `json:"timestamp"` // 毫秒
}

// Transaction 交易
//
// 交易身份是其内容哈希，Signatures 不参与内容哈希。
type Transaction struct {
	CreatorAccountID string      `json:"creator_account_id"`
	TxCounter        uint64      `json:"tx_counter"`
	CreatedTs        int64       `json:"created_ts"` // 毫秒
	Commands         []Command   `json:"commands"`
	Signatures       []Signature `json:"signatures,omitempty"`
}

// Clone 深拷贝签名列表，命令载荷只读共享
func (tx *Transaction) Clone() *Transaction {
	if tx == nil {
		return nil
	}
	out := *tx
	out.Commands = append([]Command(nil), tx.Commands...)
	out.Signatures = append([]Signature(nil), tx.Signatures...)
	return &out
}
