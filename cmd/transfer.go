package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/wallet"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <name> <dst> <amount>",
	Short: "Transfer money from source to destination account",
	Long: `Transfer moves amount from the named account to dst.
Both accounts must exist and the source must hold at least amount.

Examples:
  transfer alice bob 40
  transfer alice bob 1_000 --check`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		env, src, err := openWallet(args[0])
		if err != nil {
			return err
		}
		defer env.Close()

		out := cmd.OutOrStdout()
		if err := load(ctx, out, src); err != nil {
			return finish(out, nil, err)
		}
		if err := load(ctx, out, wallet.New(args[1], env.deps)); err != nil {
			return finish(out, nil, err)
		}

		rcpt, err := src.Transfer(ctx, args[1], amount)
		return finish(out, rcpt, err)
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
}
