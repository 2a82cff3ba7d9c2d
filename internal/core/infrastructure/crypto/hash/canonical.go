package hash

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/weisyn/finality/pkg/types"
)

// 规范编码使用 protobuf wire 格式，字段按编号升序、零值也写出，
// 因此相同内容在所有副本上得到相同字节。
//
//	Transaction: 1=creator_account_id 2=tx_counter 3=created_ts 4=commands(repeated) [5=signatures(repeated)]
//	Command:     1=type 2=payload
//	Signature:   1=public_key 2=signature 3=timestamp
//	Block:       1=height 2=prev_hash 3=merkle_root 4=created_ts 5=txs_number 6=transactions(repeated)

const (
	txFieldCreator    protowire.Number = 1
	txFieldCounter    protowire.Number = 2
	txFieldCreatedTs  protowire.Number = 3
	txFieldCommand    protowire.Number = 4
	txFieldSignature  protowire.Number = 5
	cmdFieldType      protowire.Number = 1
	cmdFieldPayload   protowire.Number = 2
	sigFieldPublicKey protowire.Number = 1
	sigFieldSignature protowire.Number = 2
	sigFieldTimestamp protowire.Number = 3

	blockFieldHeight     protowire.Number = 1
	blockFieldPrevHash   protowire.Number = 2
	blockFieldMerkleRoot protowire.Number = 3
	blockFieldCreatedTs  protowire.Number = 4
	blockFieldTxsNumber  protowire.Number = 5
	blockFieldTx         protowire.Number = 6
)

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendTransactionPayload(b []byte, tx *types.Transaction) []byte {
	if tx == nil {
		return b
	}
	b = appendBytesField(b, txFieldCreator, []byte(tx.CreatorAccountID))
	b = appendVarintField(b, txFieldCounter, tx.TxCounter)
	b = appendVarintField(b, txFieldCreatedTs, uint64(tx.CreatedTs))
	for _, cmd := range tx.Commands {
		var nested []byte
		nested = appendBytesField(nested, cmdFieldType, []byte(cmd.Type))
		nested = appendBytesField(nested, cmdFieldPayload, cmd.Payload)
		b = appendBytesField(b, txFieldCommand, nested)
	}
	return b
}

// appendSignedTransaction 交易载荷加签名，用于区块编码
func appendSignedTransaction(b []byte, tx *types.Transaction) []byte {
	b = appendTransactionPayload(b, tx)
	if tx == nil {
		return b
	}
	for _, sig := range tx.Signatures {
		var nested []byte
		nested = appendBytesField(nested, sigFieldPublicKey, sig.PublicKey[:])
		nested = appendBytesField(nested, sigFieldSignature, sig.Signature[:])
		nested = appendVarintField(nested, sigFieldTimestamp, uint64(sig.Timestamp))
		b = appendBytesField(b, txFieldSignature, nested)
	}
	return b
}

func appendBlockPayload(b []byte, block *types.Block) []byte {
	if block == nil {
		return b
	}
	b = appendVarintField(b, blockFieldHeight, block.Height)
	b = appendBytesField(b, blockFieldPrevHash, block.PrevHash[:])
	b = appendBytesField(b, blockFieldMerkleRoot, block.MerkleRoot[:])
	b = appendVarintField(b, blockFieldCreatedTs, uint64(block.CreatedTs))
	b = appendVarintField(b, blockFieldTxsNumber, uint64(block.TxsNumber))
	for _, tx := range block.Transactions {
		b = appendBytesField(b, blockFieldTx, appendSignedTransaction(nil, tx))
	}
	return b
}
