package cmd

import (
	"github.com/spf13/cobra"
)

type CreateConfig struct {
	Balance int64
	New     bool
}

var createConfig CreateConfig

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new account, if account is already created, load it",
	Long: `Create submits a create transaction for the named account.

Examples:
  # open alice with 100
  create alice -b 100

  # reset bob to zero even though the account exists
  create bob -n`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		env, w, err := openWallet(args[0])
		if err != nil {
			return err
		}
		defer env.Close()

		rcpt, err := w.Create(ctx, createConfig.Balance, createConfig.New)
		return finish(cmd.OutOrStdout(), rcpt, err)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().Int64VarP(&createConfig.Balance, "balance", "b", 0, "initial balance")
	createCmd.Flags().BoolVarP(&createConfig.New, "new", "n", false, "force to create a new account, ignoring existing one")
}
