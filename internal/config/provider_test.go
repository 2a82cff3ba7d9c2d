package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/finality/pkg/types"
)

func TestProviderDefaults(t *testing.T) {
	provider := NewProvider(nil)

	assert.Equal(t, "info", provider.GetLog().Level)
	assert.True(t, provider.GetLog().ToConsole)
	assert.True(t, provider.GetEvent().Enabled)
	assert.Equal(t, "./data/badger", provider.GetBadger().Path)
	assert.False(t, provider.GetBadger().InMemory)
	assert.Equal(t, 10*time.Second, provider.GetSimulator().ValidationTimeout)
	assert.Equal(t, 5*time.Second, provider.GetSimulator().BlockQueryTimeout)
	assert.Equal(t, uint64(1), provider.GetSimulator().MaxCommitLag)
	assert.Equal(t, "42", provider.GetNode().KeySeed)
	assert.NotNil(t, provider.GetAppConfig())
}

func TestProviderUserOverrides(t *testing.T) {
	cfg := &types.AppConfig{
		Log: &types.UserLogConfig{
			Level:    types.StringPtr("debug"),
			FilePath: types.StringPtr("/tmp/finality.log"),
		},
		Event:   &types.UserEventConfig{Enabled: types.BoolPtr(false)},
		Storage: &types.UserStorageConfig{DataRoot: types.StringPtr("/var/lib/finality"), InMemory: types.BoolPtr(true)},
		Simulator: &types.UserSimulatorConfig{
			ValidationTimeoutMs: types.Int64Ptr(250),
			BlockQueryTimeoutMs: types.Int64Ptr(0),
			MaxCommitLag:        types.Uint64Ptr(4),
		},
		Node: &types.UserNodeConfig{KeySeed: types.StringPtr("node-7")},
	}
	provider := NewProvider(cfg)

	t.Run("日志", func(t *testing.T) {
		assert.Equal(t, "debug", provider.GetLog().Level)
		assert.Equal(t, "/tmp/finality.log", provider.GetLog().FilePath)
		assert.False(t, provider.GetLog().ToConsole, "指定文件路径时默认关闭控制台")
	})

	t.Run("存储", func(t *testing.T) {
		assert.Equal(t, filepath.Join("/var/lib/finality", "badger"), provider.GetBadger().Path)
		assert.True(t, provider.GetBadger().InMemory)
	})

	t.Run("模拟器", func(t *testing.T) {
		assert.Equal(t, 250*time.Millisecond, provider.GetSimulator().ValidationTimeout)
		assert.Equal(t, 5*time.Second, provider.GetSimulator().BlockQueryTimeout, "非正数保持默认值")
		assert.Equal(t, uint64(4), provider.GetSimulator().MaxCommitLag)
	})

	assert.False(t, provider.GetEvent().Enabled)
	assert.Equal(t, "node-7", provider.GetNode().KeySeed)
}

func TestProviderDataDirFallback(t *testing.T) {
	provider := NewProvider(&types.AppConfig{DataDir: types.StringPtr("/data")})
	assert.Equal(t, filepath.Join("/data", "badger"), provider.GetBadger().Path)
}

func TestGenesisPeersResolution(t *testing.T) {
	dir := t.TempDir()
	peersFile := filepath.Join(dir, "peers.list")
	require.NoError(t, os.WriteFile(peersFile, []byte("10.0.0.2:10001\n 10.0.0.3:10001\t\n"), 0o600))

	provider := NewProvider(&types.AppConfig{
		Genesis: &types.UserGenesisConfig{
			Peers:     []string{"10.0.0.1:10001"},
			PeersFile: types.StringPtr(peersFile),
		},
	})

	peers, err := provider.GetGenesis().ResolvePeers()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1:10001", "10.0.0.2:10001", "10.0.0.3:10001"}, peers)
}

func TestLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"log":{"level":"warn"},"clock":{"type":"deterministic"}}`), 0o600))

	appConfig, err := LoadAppConfig(path)
	require.NoError(t, err)
	require.NotNil(t, appConfig.Log)
	assert.Equal(t, "warn", *appConfig.Log.Level)
	assert.Equal(t, "deterministic", NewProvider(appConfig).GetClock().Type)

	_, err = LoadAppConfig(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
	_, err = LoadAppConfig(path)
	assert.Error(t, err)
}
