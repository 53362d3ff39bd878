package cmd

import (
	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge <name>",
	Short: "Purge an account",
	Long: `Purge deletes the account from current state. Note that the account is
only purged at the current block; it is still visible from previous blocks
due to the immutability of the chain.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
		rcpt, err := w.Purge(ctx)
		return finish(out, rcpt, err)
	},
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}
