package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"

	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/store"
)

func DefaultProcessorConfig() *ProcessorConfig {
	return &ProcessorConfig{
		Processor: ProcessorSection{
			ValidatorURL: DefaultValidatorURL,
			Threads:      runtime.NumCPU(),
		},
		State:   StateSection{TimeoutMs: DefaultStoreTimeoutMs},
		Metrics: MetricsSection{ListenAddr: DefaultMetricsAddr},
	}
}

// LoadProcessorConfig reads the processor settings from an .ini file.
// Keys missing from the file keep their defaults; an empty path yields the defaults.
func LoadProcessorConfig(path string) (*ProcessorConfig, error) {
	cfg := DefaultProcessorConfig()
	if path == "" {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load processor config: %w", err)
	}
	sections := map[string]interface{}{
		"processor": &cfg.Processor,
		"state":     &cfg.State,
		"metrics":   &cfg.Metrics,
	}
	for name, target := range sections {
		if err := file.Section(name).MapTo(target); err != nil {
			return nil, fmt.Errorf("parse [%s] section: %w", name, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logx.Info("CONFIG", fmt.Sprintf("Loaded processor config from %s: validator=%s threads=%d",
		path, cfg.Processor.ValidatorURL, cfg.Processor.Threads))
	return cfg, nil
}

func (c *ProcessorConfig) Validate() error {
	if c.Processor.ValidatorURL == "" {
		return fmt.Errorf("processor.validator_url cannot be empty")
	}
	if c.Processor.Threads < 1 {
		return fmt.Errorf("processor.threads must be at least 1, got %d", c.Processor.Threads)
	}
	if c.State.TimeoutMs < 1 {
		return fmt.Errorf("state.timeout_ms must be positive, got %d", c.State.TimeoutMs)
	}
	return nil
}

func DefaultClientConfig() *ClientConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &ClientConfig{
		REST: RESTConfig{URL: DefaultRESTURL, Timeout: DefaultHTTPTimeout},
		Tracker: TrackerConfig{
			Interval:    DefaultPollInterval,
			MaxAttempts: DefaultMaxAttempts,
		},
		Wallet: WalletConfig{
			KeyDir: filepath.Join(home, ".sawtooth", "keys"),
			Cache: store.StoreConfig{
				Type:      store.LevelDBStoreType,
				Directory: filepath.Join(home, ".sawlet", "cache"),
			},
		},
		Events: EventsConfig{ValidatorURL: DefaultEventsURL},
	}
}

// LoadClientConfig reads the client yml file. An empty path yields the defaults.
func LoadClientConfig(path string) (*ClientConfig, error) {
	file := ClientConfigFile{Config: *DefaultClientConfig()}
	if path == "" {
		return &file.Config, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open client config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode client config: %w", err)
	}
	if err := file.Config.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded client config from %s: rest=%s", path, file.Config.REST.URL))
	return &file.Config, nil
}

func (c *ClientConfig) Validate() error {
	if c.REST.URL == "" {
		return fmt.Errorf("rest.url cannot be empty")
	}
	if c.Tracker.MaxAttempts < 1 {
		return fmt.Errorf("tracker.max_attempts must be at least 1, got %d", c.Tracker.MaxAttempts)
	}
	if c.Tracker.Interval <= 0 {
		return fmt.Errorf("tracker.interval must be positive")
	}
	if err := c.Wallet.Cache.Validate(); err != nil {
		return fmt.Errorf("wallet.cache: %w", err)
	}
	return nil
}
