package config

import (
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every bound variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HOST", "PORT", "H2C", "SHUTDOWN_TIMEOUT", "LOG_JSON", "LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	v := viper.New()
	require.NoError(t, Setup(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.False(t, cfg.H2c)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Equal(t, ":4567", cfg.Addr())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "8081")
	t.Setenv("H2C", "true")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("LOG_LEVEL", "debug")

	v := viper.New()
	require.NoError(t, Setup(v))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8081", cfg.Addr())
	assert.True(t, cfg.H2c)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  interface{}
	}{
		{"zero port", "port", 0},
		{"port too large", "port", 70000},
		{"bad level", "log-level", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			v := viper.New()
			require.NoError(t, Setup(v))
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
