package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/logx"
)

type GlobalFlags struct {
	ConfigPath string
	URL        string
	Check      bool
}

var globalFlags GlobalFlags

var rootCmd = &cobra.Command{
	Use:   "sawlet",
	Short: "A wallet by Hyperledger Sawtooth",
	Long: `Command line wallet for the bank transaction family.

Every command names the account it acts on. Mutating commands submit a
signed batch to the validator's REST API and wait for it to commit.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "client config file (yml)")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.URL, "url", "u", "", "validator REST API URL, overrides the config file")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Check, "check", "c", false, "check the balance on chain while loading the account")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
