package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/finality/internal/core/infrastructure/crypto/hash"
	"github.com/weisyn/finality/internal/core/infrastructure/crypto/signature"
	"github.com/weisyn/finality/pkg/types"
)

func TestOptionsResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"node":{"key_seed":"7"},"genesis":{"peers":["x:1"]}}`), 0o644))

	o := newOptions(WithConfigFile(path), WithGenesisPeers([]string{"a:1", "b:2"}), WithInMemoryStorage())
	require.NoError(t, o.resolve())

	cfg := o.GetAppConfig()
	assert.Equal(t, "7", *cfg.Node.KeySeed)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Genesis.Peers, "覆盖项优先于文件")
	assert.True(t, *cfg.Storage.InMemory)

	missing := newOptions(WithConfigFile(filepath.Join(dir, "missing.json")))
	assert.Error(t, missing.resolve())

	direct := newOptions(WithConfigFile(path), WithAppConfig(&types.AppConfig{}))
	require.NoError(t, direct.resolve())
	assert.Nil(t, direct.GetAppConfig().Node)
}

func TestStartRunsPipeline(t *testing.T) {
	application, err := Start(
		WithInMemoryStorage(),
		WithGenesisPeers([]string{"10.0.0.1:10001"}),
		WithNodeKeySeed("node"),
		WithLogLevel("error"),
	)
	require.NoError(t, err)
	defer func() { assert.NoError(t, application.Stop()) }()

	ctx := context.Background()
	genesis, err := application.BlockQuery().GetLastBlock(ctx)
	require.NoError(t, err)
	assert.True(t, genesis.IsGenesis())

	tx := &types.Transaction{CreatorAccountID: "alice@test", TxCounter: 1}
	signature.SignTransaction(signature.MustKeyPairFromSeed("alice"), hash.NewHashService(), tx, 1)

	blk, err := application.Driver().Submit(ctx, &types.Proposal{Height: 2, Transactions: []*types.Transaction{tx}})
	require.NoError(t, err)
	assert.Equal(t, genesis.Hash, blk.PrevHash)
	assert.Equal(t, uint32(1), blk.TxsNumber)
	assert.Equal(t, blk.Hash, application.Simulator().LastBlock().Hash)
}
