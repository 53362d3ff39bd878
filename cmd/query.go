package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/transaction"
)

var queryKey string

var queryCmd = &cobra.Command{
	Use:   "query <name>",
	Short: "Query account",
	Long: `Query submits a query transaction and reads the value from its receipt,
so the answer reflects committed state.`,
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
		value, rcpt, err := w.Query(ctx, queryKey)
		if err == nil && rcpt.Result.Committed() {
			if rcpt.Value != nil {
				fmt.Fprintf(out, "%s of %s: %d\n", queryKey, args[0], value)
			} else {
				fmt.Fprintf(out, "%s of %s: no result\n", queryKey, args[0])
			}
		}
		return finish(out, rcpt, err)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryKey, "key", "k", transaction.KeyBalance, "which key to query")
}
