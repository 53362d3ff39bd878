package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/address"
	"github.com/mezonai/sawlet/events"
	"github.com/mezonai/sawlet/exception"
	"github.com/mezonai/sawlet/logx"
	"github.com/mezonai/sawlet/transaction"
)

var watchURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print account changes as blocks commit",
	Long: `Watch subscribes to the validator's state-delta events for the bank
namespace and prints every account write and purge.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig()
		if err != nil {
			return err
		}
		url := cfg.Events.ValidatorURL
		if watchURL != "" {
			url = watchURL
		}

		ctx, cancel := signalContext()
		defer cancel()

		codec := address.NewCodec(transaction.FamilyName)
		bus := events.NewEventBus()
		id, ch := bus.Subscribe()
		defer bus.Unsubscribe(id)

		log := logx.New("WATCH")
		watcher := events.NewWatcher(url, events.NewEventRouter(bus, codec.Prefix(), log), codec.Prefix(), log)
		done := make(chan error, 1)
		exception.SafeGo("event-watcher", func() {
			done <- watcher.Run(ctx)
		})

		return printEvents(ctx, cmd.OutOrStdout(), done, ch)
	},
}

// printEvents writes account events until the watcher stops or ctx ends,
// even when the watcher never reports back.
func printEvents(ctx context.Context, out io.Writer, done <-chan error, ch <-chan events.AccountEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			return err
		case ev := <-ch:
			switch e := ev.(type) {
			case *events.AccountUpdated:
				fmt.Fprintf(out, "[block %d] %s balance=%d (%s)\n", e.BlockNum(), e.Account().Name, e.Account().Balance, e.Address())
			case *events.AccountDeleted:
				fmt.Fprintf(out, "[block %d] purged %s\n", e.BlockNum(), e.Address())
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchURL, "validator", "", "validator component endpoint, overrides the config file")
}
