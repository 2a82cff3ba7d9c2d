// Package clock 定义时间源接口
package clock

import "time"

// Clock 统一时间源
//
// 区块时间戳通过该接口获取，测试中替换为 Mock 或确定性实现。
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Unix() int64
	UnixNano() int64
}
