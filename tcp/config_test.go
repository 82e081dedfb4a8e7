package tcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidFillsDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.Valid())
	require.Equal(t, uint16(13), cfg.MaxProtocolVersion)
	require.NotZero(t, cfg.EchoIdleTimeout)
}

func TestConfigValidRejectsPriorityOutOfRange(t *testing.T) {
	cfg := Config{Priority: 100}
	require.Error(t, cfg.Valid())
}

func TestConfigValidRejectsVersionBelowFloor(t *testing.T) {
	cfg := Config{MaxProtocolVersion: 3}
	require.Error(t, cfg.Valid())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Valid())
}
