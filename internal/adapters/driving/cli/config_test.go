package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lsmkv/internal/core/domain"
	"github.com/custodia-labs/lsmkv/internal/core/services"
)

func TestConfigList(t *testing.T) {
	setupServices(t)

	out, err := execute(t, "", "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, services.KeyBackend)
	assert.Contains(t, out, "= lsm")
	assert.Contains(t, out, services.KeyFlushInterval)
	assert.NotContains(t, out, "Warning")
}

func TestConfigSetGet(t *testing.T) {
	setupServices(t)

	out, err := execute(t, "", "config", "set", services.KeyFlushThreshold, "42")
	require.NoError(t, err)
	assert.Contains(t, out, "memtable.flush_threshold = 42")

	out, err = execute(t, "", "config", "get", services.KeyFlushThreshold)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestConfigSet_Invalid(t *testing.T) {
	setupServices(t)

	_, err := execute(t, "", "config", "set", services.KeyBackend, "leveldb")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "", "config", "get", "no.such.key")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigPath(t *testing.T) {
	setupServices(t)

	out, err := execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, ":memory:\n", out)
}

func TestConfig_NotConfigured(t *testing.T) {
	old := settingsService
	settingsService = nil
	defer func() { settingsService = old }()

	_, err := execute(t, "", "config", "list")
	assert.ErrorIs(t, err, errNoSettings)
}
