package writegate

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wgif "github.com/weisyn/finality/pkg/interfaces/infrastructure/writegate"
)

func TestReadOnlyBlocksWrites(t *testing.T) {
	gate := New(nil)
	ctx := context.Background()

	require.NoError(t, gate.AssertWriteAllowed(ctx, "commit_block"))

	gate.EnterReadOnly("磁盘损坏")
	assert.True(t, gate.IsReadOnly())
	assert.Equal(t, "磁盘损坏", gate.ReadOnlyReason())

	err := gate.AssertWriteAllowed(ctx, "commit_block")
	assert.ErrorIs(t, err, wgif.ErrWriteBlocked)
	assert.Contains(t, err.Error(), "磁盘损坏")

	// 重复进入保留最初原因
	gate.EnterReadOnly("其他原因")
	assert.Equal(t, "磁盘损坏", gate.ReadOnlyReason())

	gate.ExitReadOnly()
	assert.False(t, gate.IsReadOnly())
	assert.Empty(t, gate.ReadOnlyReason())
	assert.NoError(t, gate.AssertWriteAllowed(ctx, "commit_block"))
}

func TestAssertWriteAllowedHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, New(nil).AssertWriteAllowed(ctx, "commit_block"), context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	gate := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			gate.EnterReadOnly("并发")
			gate.ExitReadOnly()
		}()
		go func() {
			defer wg.Done()
			_ = gate.AssertWriteAllowed(context.Background(), "read")
			_ = gate.IsReadOnly()
		}()
	}
	wg.Wait()
	assert.False(t, gate.IsReadOnly())
}
