package simulator

import "time"

var (
	defaultValidationTimeout = 10 * time.Second
	defaultBlockQueryTimeout = 5 * time.Second
)

// 提交先于下一轮时缓存区块至多领先存储一个高度
const defaultMaxCommitLag uint64 = 1
