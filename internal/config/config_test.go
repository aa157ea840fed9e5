package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCreatesDataDir(t *testing.T) {
	opts := GetDefaultOptions()
	opts.Data = filepath.Join(t.TempDir(), "nested", "data")

	require.NoError(t, Resolve(opts))

	info, err := os.Stat(opts.Data)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(opts.Data, defaultDBFileName), opts.DSN)
}

func TestResolveKeepsExplicitDSN(t *testing.T) {
	opts := GetDefaultOptions()
	opts.Data = t.TempDir()
	opts.DSN = filepath.Join(t.TempDir(), "elsewhere.db")
	want := opts.DSN

	require.NoError(t, Resolve(opts))
	assert.Equal(t, want, opts.DSN)
}

func TestResolveTrimsTrailingSeparator(t *testing.T) {
	opts := GetDefaultOptions()
	dir := t.TempDir()
	opts.Data = dir + "/"

	require.NoError(t, Resolve(opts))
	assert.Equal(t, dir, opts.Data)
}

func TestLoadConfigFile(t *testing.T) {
	GetDefaultOptions()
	opts, err := ParseFile("testdata/config_test.toml")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", opts.Host, "host incorrect")
	assert.Equal(t, "test.log", opts.LogFile, "log_file incorrect")
	assert.Equal(t, 2333, opts.Port, "port incorrect")
	assert.Equal(t, "debug", opts.LogLevel, "log_level incorrect")
	assert.Equal(t, 4, opts.WorkerPoolSize)
	assert.Empty(t, opts.CheckpointSchedule)
	// untouched keys keep their defaults
	assert.Equal(t, defaultBusyTimeout, opts.BusyTimeout)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := ParseFile("testdata/does_not_exist.toml")
	assert.Error(t, err)
}

func captureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()
	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	origOut, origErr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = outW, errW
	defer func() { os.Stdout, os.Stderr = origOut, origErr }()

	fn()
	require.NoError(t, outW.Close())
	require.NoError(t, errW.Close())

	o, err := io.ReadAll(outR)
	require.NoError(t, err)
	e, err := io.ReadAll(errR)
	require.NoError(t, err)
	return string(o), string(e)
}

func TestResolveErrorKeepsStdoutClean(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	opts := GetDefaultOptions()
	opts.Data = filepath.Join(blocker, "data")

	var resolveErr error
	stdout, stderr := captureOutput(t, func() {
		resolveErr = Resolve(opts)
	})
	require.Error(t, resolveErr)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error checking data directory")
}
