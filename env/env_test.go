package env_test

import (
	"github.com/jt05610/hcpn"
	"github.com/jt05610/hcpn/env"
	"github.com/jt05610/hcpn/graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	v, err := env.New(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	e, err := env.Load(v)
	require.NoError(t, err)
	assert.Equal(t, env.Default(), e)
	assert.Equal(t, hcpn.DefaultMaxSteps, e.MaxSteps)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HCPN_FORMAT", "png")
	t.Setenv("HCPN_MAX_STEPS", "25")
	v, err := env.New(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	e, err := env.Load(v)
	require.NoError(t, err)
	assert.Equal(t, graphviz.PNG, e.Format)
	assert.Equal(t, 25, e.MaxSteps)
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HCPN_RANKDIR=TB\nHCPN_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("HCPN_RANKDIR")
		_ = os.Unsetenv("HCPN_LOG_LEVEL")
	})
	v, err := env.New(path)
	require.NoError(t, err)
	e, err := env.Load(v)
	require.NoError(t, err)
	assert.Equal(t, graphviz.TopToBottom, e.RankDir)

	logger, err := e.Logger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoad_Invalid(t *testing.T) {
	for key, value := range map[string]string{
		"HCPN_FORMAT":    "pdf",
		"HCPN_RANKDIR":   "sideways",
		"HCPN_MAX_STEPS": "0",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			v, err := env.New(filepath.Join(t.TempDir(), "missing.env"))
			require.NoError(t, err)
			_, err = env.Load(v)
			assert.Error(t, err)
		})
	}

	e := env.Default()
	e.LogLevel = "loud"
	_, err := e.Logger()
	assert.ErrorIs(t, err, env.ErrInvalidSetting)
}
