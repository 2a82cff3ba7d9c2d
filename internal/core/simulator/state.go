package simulator

// State 模拟器轮次状态
//
//	Idle → Validating → ProposalVerified → BuildingBlock → BlockReady → Idle
//
// 任一阶段失败都回到 Idle。
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateProposalVerified
	StateBuildingBlock
	StateBlockReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateProposalVerified:
		return "proposal_verified"
	case StateBuildingBlock:
		return "building_block"
	case StateBlockReady:
		return "block_ready"
	default:
		return "unknown"
	}
}
