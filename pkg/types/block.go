package types

// Proposal 排序层产出的有序交易批次
type Proposal struct {
	Height       uint64         `json:"height"`
	CreatedTs    int64          `json:"created_ts"` // 毫秒
	Transactions []*Transaction `json:"transactions"`
}

// VerifiedProposal 通过有状态验证的提案
//
// Transactions 是源提案交易的保序子序列，可能为空。
type VerifiedProposal struct {
	Height       uint64         `json:"height"`
	CreatedTs    int64          `json:"created_ts"`
	Transactions []*Transaction `json:"transactions"`
}

// IsEmpty 是否所有交易都被拒绝
func (v *VerifiedProposal) IsEmpty() bool {
	return v == nil || len(v.Transactions) == 0
}

// Block 哈希链接的区块
//
// Hash 在附加任何区块签名之前计算，Signatures 从不参与哈希。
type Block struct {
	Height       uint64         `json:"height"`
	PrevHash     Hash           `json:"prev_hash"`
	MerkleRoot   Hash           `json:"merkle_root"`
	CreatedTs    int64          `json:"created_ts"` // 毫秒
	TxsNumber    uint32         `json:"txs_number"`
	Transactions []*Transaction `json:"transactions"`
	Hash         Hash           `json:"hash"`
	Signatures   []Signature    `json:"signatures,omitempty"`
}

// IsGenesis 是否为创世区块
func (b *Block) IsGenesis() bool {
	return b != nil && b.Height == GenesisHeight
}

// Clone 复制区块头与签名列表，交易指针共享
//
// 已发布的区块由多个订阅者共享，追加签名前必须先 Clone。
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := *b
	out.Transactions = append([]*Transaction(nil), b.Transactions...)
	out.Signatures = append([]Signature(nil), b.Signatures...)
	return &out
}

// GenesisHeight 创世区块高度
const GenesisHeight uint64 = 1
