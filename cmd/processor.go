package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/config"
	"github.com/mezonai/sawlet/processor"
)

type ProcessorFlags struct {
	ConfigPath   string
	ValidatorURL string
	Threads      int
}

var processorFlags ProcessorFlags

var processorCmd = &cobra.Command{
	Use:   "processor",
	Short: "Run the bank transaction processor",
	Long: `Processor connects to a validator and applies bank transactions until
interrupted.

Examples:
  processor --processor-config processor.ini
  processor -V tcp://validator:4004 -t 4`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadProcessorConfig(processorFlags.ConfigPath)
		if err != nil {
			return err
		}
		if processorFlags.ValidatorURL != "" {
			cfg.Processor.ValidatorURL = processorFlags.ValidatorURL
		}
		if processorFlags.Threads > 0 {
			cfg.Processor.Threads = processorFlags.Threads
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return processor.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(processorCmd)

	processorCmd.Flags().StringVar(&processorFlags.ConfigPath, "processor-config", "", "processor config file (ini)")
	processorCmd.Flags().StringVarP(&processorFlags.ValidatorURL, "validator", "V", "", "validator component endpoint")
	processorCmd.Flags().IntVarP(&processorFlags.Threads, "threads", "t", 0, "worker threads")
}
