package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/store"
	"github.com/mezonai/sawlet/types"
	"github.com/mezonai/sawlet/wallet"
)

var balanceCmd = &cobra.Command{
	Use:   "balance [name]",
	Short: "Show the last known balance",
	Long: `Balance prints the balance cached by earlier commands without
contacting the validator. Use --check to refresh it from chain state.
Without a name it lists every cached account.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			return listCached(out)
		}

		ctx, cancel := signalContext()
		defer cancel()

		env, w, err := openWallet(args[0])
		if err != nil {
			return err
		}
		defer env.Close()

		snap, err := w.Load(ctx, globalFlags.Check)
		if err != nil {
			return finish(out, nil, err)
		}
		fmt.Fprintf(out, "Account %s (%s)\n", snap.Name, snap.Address)
		fmt.Fprintf(out, "Balance: %d (as of %s)\n", snap.Balance, asOf(snap))
		return nil
	},
}

func listCached(out io.Writer) error {
	cfg, err := loadClientConfig()
	if err != nil {
		return err
	}
	provider, err := store.CreateProvider(&cfg.Wallet.Cache)
	if err != nil {
		return fmt.Errorf("open balance cache: %w", err)
	}
	cache := wallet.NewCache(provider)
	defer cache.Close()

	snaps, err := cache.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No cached accounts.")
		return nil
	}
	for _, snap := range snaps {
		fmt.Fprintf(out, "%-16s %20d  %s\n", snap.Name, snap.Balance, asOf(snap))
	}
	return nil
}

func asOf(snap *types.AccountSnapshot) string {
	return time.Unix(snap.UpdatedAt, 0).Format(time.DateTime)
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
