package processor

import (
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"time"

	"github.com/hyperledger/sawtooth-sdk-go/processor"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/config"
	"github.com/mezonai/sawlet/exception"
	"github.com/mezonai/sawlet/ledger"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/monitoring"
	"github.com/mezonai/sawlet/transaction"
)

// Run connects to the validator and serves bank transactions until the
// process is signalled. Metrics are served on cfg.Metrics.ListenAddr when set.
func Run(cfg *config.ProcessorConfig) error {
	log := logx.New("PROCESSOR")
	codec := address.NewCodec(transaction.FamilyName)
	handler := NewBankHandler(ledger.NewLedger(codec, logx.New("LEDGER")), cfg.StateTimeout(), log)

	if cfg.Metrics.ListenAddr != "" {
		monitoring.InitMetrics()
		serveMetrics(cfg.Metrics.ListenAddr, log)
	}

	tp := processor.NewTransactionProcessor(cfg.Processor.ValidatorURL)
	tp.AddHandler(handler)
	tp.SetThreadCount(uint(cfg.Processor.Threads))
	if cfg.Processor.MaxQueueSize > 0 {
		tp.SetMaxQueueSize(uint(cfg.Processor.MaxQueueSize))
	}
	tp.ShutdownOnSignal(syscall.SIGINT, syscall.SIGTERM)

	log.Infof("Serving family %s %s (namespace %s) via %s",
		codec.Family(), transaction.FamilyVersion, codec.Prefix(), cfg.Processor.ValidatorURL)
	if err := tp.Start(); err != nil {
		return fmt.Errorf("transaction processor stopped: %w", err)
	}
	return nil
}

func serveMetrics(addr string, log *logx.Logger) {
	mux := http.NewServeMux()
	monitoring.RegisterMetrics(mux)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	exception.SafeGo("metrics-server", func() {
		log.Infof("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server failed: %v", err)
		}
	})
}
