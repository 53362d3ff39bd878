package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mezonai/sawlet/store"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadProcessorConfigDefaults(t *testing.T) {
	cfg, err := LoadProcessorConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultValidatorURL, cfg.Processor.ValidatorURL)
	assert.Equal(t, 3*time.Second, cfg.StateTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadProcessorConfigIni(t *testing.T) {
	path := writeFile(t, "processor.ini", `
[processor]
validator_url = tcp://validator:4004
threads = 4

[state]
timeout_ms = 500
`)
	cfg, err := LoadProcessorConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "tcp://validator:4004", cfg.Processor.ValidatorURL)
	assert.Equal(t, 4, cfg.Processor.Threads)
	assert.Equal(t, 500*time.Millisecond, cfg.StateTimeout())
	assert.Equal(t, DefaultMetricsAddr, cfg.Metrics.ListenAddr)
}

func TestLoadProcessorConfigRejectsBadValues(t *testing.T) {
	path := writeFile(t, "processor.ini", "[processor]\nthreads = 0\n")
	_, err := LoadProcessorConfig(path)
	assert.Error(t, err)
}

func TestLoadClientConfigYaml(t *testing.T) {
	path := writeFile(t, "client.yml", `
config:
  rest:
    url: http://rest-api:8008
  tracker:
    interval: 250ms
    max_attempts: 3
    fail_on_exhaustion: true
  wallet:
    key_dir: /tmp/keys
    cache:
      type: memory
`)
	cfg, err := LoadClientConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://rest-api:8008", cfg.REST.URL)
	assert.Equal(t, DefaultHTTPTimeout, cfg.REST.Timeout)
	assert.Equal(t, 250*time.Millisecond, cfg.Tracker.Interval)
	assert.Equal(t, 3, cfg.Tracker.MaxAttempts)
	assert.True(t, cfg.Tracker.FailOnExhaustion)
	assert.Equal(t, "/tmp/keys", cfg.Wallet.KeyDir)
	assert.Equal(t, store.MemoryStoreType, cfg.Wallet.Cache.Type)
}

func TestLoadClientConfigDefaults(t *testing.T) {
	cfg, err := LoadClientConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRESTURL, cfg.REST.URL)
	assert.Equal(t, DefaultMaxAttempts, cfg.Tracker.MaxAttempts)
	assert.False(t, cfg.Tracker.FailOnExhaustion)
}
