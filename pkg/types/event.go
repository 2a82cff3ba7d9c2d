package types

// EventType 事件主题
type EventType string

const (
	// EventTypeVerifiedProposal 已验证提案流
	EventTypeVerifiedProposal EventType = "simulator.verified_proposal"
	// EventTypeBlock 区块流
	EventTypeBlock EventType = "simulator.block"
	// EventTypeBlockCommitted 区块已提交到账本
	EventTypeBlockCommitted EventType = "ledger.block_committed"
)

// SubscriptionID 订阅标识
type SubscriptionID string
