// Package validation 提供默认有状态验证器
package validation

import (
	"context"
	"fmt"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/finality/internal/core/infrastructure/log"
	cryptointf "github.com/weisyn/finality/pkg/interfaces/infrastructure/crypto"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/finality/pkg/interfaces/ledger"
	validationintf "github.com/weisyn/finality/pkg/interfaces/validation"
	"github.com/weisyn/finality/pkg/types"
)

var _ validationintf.StatefulValidator = (*Validator)(nil)

// RejectReason 交易被拒绝的原因
type RejectReason string

const (
	RejectNilTransaction   RejectReason = "nil_transaction"
	RejectBadSignature     RejectReason = "bad_signature"
	RejectStaleCounter     RejectReason = "stale_counter"
	RejectMalformedCommand RejectReason = "malformed_command"
	RejectKnownPeer        RejectReason = "known_peer"
)

// Validator 默认有状态验证器
//
// 规则：
//   - 交易至少携带一个签名，且所有签名对交易内容哈希有效；
//   - TxCounter 严格大于账户已记录的计数，通过后写入快照，同一提案内的重放被拒绝；
//   - AddPeer 不得注册已知节点。
//
// 被拒绝的交易被过滤，快照读写失败与 ctx 结束是基础设施错误。
type Validator struct {
	verifier cryptointf.SignatureVerifier
	hasher   cryptointf.HashProvider
	logger   logintf.Logger
}

// New 创建默认验证器
func New(verifier cryptointf.SignatureVerifier, hasher cryptointf.HashProvider, logger logintf.Logger) *Validator {
	return &Validator{
		verifier: verifier,
		hasher:   hasher,
		logger:   log.NewModuleLogger(logger, "validation"),
	}
}

// Validate 返回通过验证的交易保序子序列
func (v *Validator) Validate(ctx context.Context, proposal *types.Proposal, snapshot ledger.TemporaryLedger) (*types.VerifiedProposal, error) {
	if proposal == nil {
		return nil, fmt.Errorf("提案为空")
	}
	verified := &types.VerifiedProposal{
		Height:       proposal.Height,
		CreatedTs:    proposal.CreatedTs,
		Transactions: make([]*types.Transaction, 0, len(proposal.Transactions)),
	}

	for i, tx := range proposal.Transactions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		reason, err := v.check(ctx, tx, snapshot)
		if err != nil {
			return nil, fmt.Errorf("验证交易 %d 失败: %w", i, err)
		}
		if reason != "" {
			v.logger.Debugf("交易被拒绝: height=%d index=%d reason=%s", proposal.Height, i, reason)
			continue
		}
		verified.Transactions = append(verified.Transactions, tx)
	}
	return verified, nil
}

// check 返回拒绝原因；为空表示通过，且状态变更已写入快照
func (v *Validator) check(ctx context.Context, tx *types.Transaction, snapshot ledger.TemporaryLedger) (RejectReason, error) {
	if tx == nil {
		return RejectNilTransaction, nil
	}
	if !signature.VerifyTransaction(v.verifier, v.hasher, tx) {
		return RejectBadSignature, nil
	}

	stored, ok, err := snapshot.GetAccountCounter(ctx, tx.CreatorAccountID)
	if err != nil {
		return "", err
	}
	if ok && tx.TxCounter <= stored {
		return RejectStaleCounter, nil
	}

	peers := make([]types.AddPeer, 0)
	seen := make(map[types.PublicKey]struct{})
	for _, cmd := range tx.Commands {
		if cmd.Type != types.CommandAddPeer {
			continue
		}
		peer, err := cmd.DecodeAddPeer()
		if err != nil {
			return RejectMalformedCommand, nil
		}
		if _, dup := seen[peer.PeerKey]; dup {
			return RejectKnownPeer, nil
		}
		known, err := snapshot.HasPeer(ctx, peer.PeerKey)
		if err != nil {
			return "", err
		}
		if known {
			return RejectKnownPeer, nil
		}
		seen[peer.PeerKey] = struct{}{}
		peers = append(peers, peer)
	}

	// 所有检查通过后才写入快照
	if err := snapshot.SetAccountCounter(ctx, tx.CreatorAccountID, tx.TxCounter); err != nil {
		return "", err
	}
	for _, peer := range peers {
		if err := snapshot.AddPeer(ctx, peer); err != nil {
			return "", err
		}
	}
	return "", nil
}
