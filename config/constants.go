package config

import "time"

const (
	DefaultValidatorURL   = "tcp://127.0.0.1:4004"
	DefaultRESTURL        = "http://127.0.0.1:8008"
	DefaultStoreTimeoutMs = 3000
	DefaultMetricsAddr    = ":9101"
	DefaultEventsURL      = "tcp://127.0.0.1:4004"

	DefaultHTTPTimeout  = 10 * time.Second
	DefaultPollInterval = time.Second
	DefaultMaxAttempts  = 10
)
