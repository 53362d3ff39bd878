package config

import (
	"time"

	"github.com/mezonai/sawlet/store"
)

// ProcessorSection is the [processor] section of the processor ini file.
type ProcessorSection struct {
	ValidatorURL string `ini:"validator_url"`
	Threads      int    `ini:"threads"`
	MaxQueueSize int    `ini:"max_queue_size"`
}

// StateSection is the [state] section: how long one state call may take.
type StateSection struct {
	TimeoutMs int `ini:"timeout_ms"`
}

type MetricsSection struct {
	ListenAddr string `ini:"listen_addr"`
}

// ProcessorConfig holds the transaction processor settings.
type ProcessorConfig struct {
	Processor ProcessorSection
	State     StateSection
	Metrics   MetricsSection
}

func (c *ProcessorConfig) StateTimeout() time.Duration {
	return time.Duration(c.State.TimeoutMs) * time.Millisecond
}

type RESTConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type TrackerConfig struct {
	Interval         time.Duration `yaml:"interval"`
	MaxAttempts      int           `yaml:"max_attempts"`
	FailOnExhaustion bool          `yaml:"fail_on_exhaustion"`
}

type WalletConfig struct {
	KeyDir string            `yaml:"key_dir"`
	Cache  store.StoreConfig `yaml:"cache"`
}

type EventsConfig struct {
	ValidatorURL string `yaml:"validator_url"`
}

// ClientConfig holds the CLI and wallet settings.
type ClientConfig struct {
	REST    RESTConfig    `yaml:"rest"`
	Tracker TrackerConfig `yaml:"tracker"`
	Wallet  WalletConfig  `yaml:"wallet"`
	Events  EventsConfig  `yaml:"events"`
}

// ClientConfigFile is the top-level structure for the client yml file
type ClientConfigFile struct {
	Config ClientConfig `yaml:"config"`
}
