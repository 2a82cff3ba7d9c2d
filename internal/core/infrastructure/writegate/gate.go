// Package writegate 提供账本写门闸实现
package writegate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/weisyn/finality/internal/core/infrastructure/log"
	logintf "github.com/weisyn/finality/pkg/interfaces/infrastructure/log"
	wgif "github.com/weisyn/finality/pkg/interfaces/infrastructure/writegate"
)

var _ wgif.WriteGate = (*Gate)(nil)

// Gate 默认写门闸
type Gate struct {
	mu         sync.RWMutex
	readOnly   bool
	reason     string
	readOnlyAt time.Time

	logger logintf.Logger
}

// New 创建写门闸，logger 可为 nil
func New(logger logintf.Logger) *Gate {
	return &Gate{logger: log.NewModuleLogger(logger, "writegate")}
}

// EnterReadOnly 进入只读模式
//
// 已处于只读时保留最初的原因。
func (g *Gate) EnterReadOnly(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readOnly {
		return
	}
	g.readOnly = true
	g.reason = reason
	g.readOnlyAt = time.Now()
	g.logger.Errorf("账本进入只读模式: %s", reason)
}

// ExitReadOnly 退出只读模式
func (g *Gate) ExitReadOnly() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.readOnly {
		return
	}
	g.logger.Warnf("账本退出只读模式: reason=%s since=%s", g.reason, g.readOnlyAt.Format(time.RFC3339))
	g.readOnly = false
	g.reason = ""
	g.readOnlyAt = time.Time{}
}

// IsReadOnly 是否只读
func (g *Gate) IsReadOnly() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.readOnly
}

// ReadOnlyReason 只读原因
func (g *Gate) ReadOnlyReason() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.reason
}

// AssertWriteAllowed 校验写操作是否允许
func (g *Gate) AssertWriteAllowed(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.readOnly {
		return fmt.Errorf("%w (read-only): op=%s reason=%s", wgif.ErrWriteBlocked, op, g.reason)
	}
	return nil
}
