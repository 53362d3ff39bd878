package cmd

import (
	"github.com/spf13/cobra"
)

var depositCmd = &cobra.Command{
	Use:   "deposit <name> <amount>",
	Short: "Deposit money",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChange(cmd, args, false)
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <name> <amount>",
	Short: "Withdraw money",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChange(cmd, args, true)
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)
	rootCmd.AddCommand(withdrawCmd)
}

func runChange(cmd *cobra.Command, args []string, withdraw bool) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	env, w, err := openWallet(args[0])
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	if err := load(ctx, out, w); err != nil {
		return finish(out, nil, err)
	}

	if withdraw {
		rcpt, err := w.Withdraw(ctx, amount)
		return finish(out, rcpt, err)
	}
	rcpt, err := w.Deposit(ctx, amount)
	return finish(out, rcpt, err)
}
