package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/client"
	"github.com/mezonai/sawlet/config"
	bankerrors "github.com/mezonai/sawlet/errors"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/store"
	"github.com/mezonai/sawlet/transaction"
	"github.com/mezonai/sawlet/wallet"
)

// walletEnv is everything a wallet command needs, built from the client config.
type walletEnv struct {
	cfg   *config.ClientConfig
	deps  wallet.Deps
	cache *wallet.Cache
}

func loadClientConfig() (*config.ClientConfig, error) {
	cfg, err := config.LoadClientConfig(globalFlags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if globalFlags.URL != "" {
		cfg.REST.URL = globalFlags.URL
	}
	return cfg, nil
}

// openWallet loads the signing key of the acting account and wires the wallet dependencies.
func openWallet(name string) (*walletEnv, *wallet.Wallet, error) {
	cfg, err := loadClientConfig()
	if err != nil {
		return nil, nil, err
	}

	signer, created, err := wallet.LoadOrCreateSigner(cfg.Wallet.KeyDir, name)
	if err != nil {
		return nil, nil, err
	}
	if created {
		logx.Info("WALLET", fmt.Sprintf("Created signing key %s", wallet.KeyPath(cfg.Wallet.KeyDir, name)))
	}

	provider, err := store.CreateProvider(&cfg.Wallet.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("open balance cache: %w", err)
	}
	cache := wallet.NewCache(provider)

	api := client.NewClient(client.Config{URL: cfg.REST.URL, Timeout: cfg.REST.Timeout}, logx.New("REST"))
	tracker := client.NewTracker(api, client.TrackerConfig{
		Interval:         cfg.Tracker.Interval,
		MaxAttempts:      cfg.Tracker.MaxAttempts,
		FailOnExhaustion: cfg.Tracker.FailOnExhaustion,
	}, logx.New("TRACKER"))

	env := &walletEnv{
		cfg: cfg,
		deps: wallet.Deps{
			Builder: transaction.NewBuilder(address.NewCodec(transaction.FamilyName), transaction.FamilyVersion, signer),
			API:     api,
			Tracker: tracker,
			Cache:   cache,
			Log:     logx.New("WALLET"),
		},
		cache: cache,
	}
	return env, wallet.New(name, env.deps), nil
}

func (e *walletEnv) Close() {
	if err := e.cache.Close(); err != nil {
		logx.Warn("WALLET", "Failed to close balance cache:", err)
	}
}

// load applies the --check flag before an operation on an existing account.
func load(ctx context.Context, w io.Writer, wl *wallet.Wallet) error {
	snap, err := wl.Load(ctx, globalFlags.Check)
	if err != nil {
		return err
	}
	if globalFlags.Check {
		fmt.Fprintf(w, "Account %s has balance %d.\n", snap.Name, snap.Balance)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseAmount(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse amount %q: %w", s, err)
	}
	return v, nil
}

func printReceipt(w io.Writer, rcpt *wallet.Receipt) {
	if rcpt == nil {
		return
	}
	if rcpt.Loaded != nil {
		fmt.Fprintf(w, "Account %s already exists with balance %d.\n", rcpt.Loaded.Name, rcpt.Loaded.Balance)
		return
	}
	if rcpt.Submission != nil {
		fmt.Fprintf(w, "Transaction: %s\n", rcpt.Submission.TxID)
		fmt.Fprintf(w, "Batch:       %s\n", rcpt.Submission.BatchID)
	}
	if rcpt.Result != nil {
		fmt.Fprintf(w, "Status:      %s (%d polls)\n", rcpt.Result.Status, rcpt.Result.Attempts)
		if msg := rcpt.Result.InvalidMessage(); msg != "" {
			fmt.Fprintf(w, "Reason:      %s\n", msg)
		}
	}
}

// describe renders err for the terminal.
func describe(err error) string {
	var le *bankerrors.LedgerError
	if errors.As(err, &le) {
		return le.Describe()
	}
	return err.Error()
}

// finish prints the receipt and turns err into the command's error.
func finish(w io.Writer, rcpt *wallet.Receipt, err error) error {
	printReceipt(w, rcpt)
	if err != nil {
		return errors.New(describe(err))
	}
	return nil
}
