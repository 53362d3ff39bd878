package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mezonai/sawlet/signing"
	"github.com/mezonai/sawlet/wallet"
)

var keygenForce bool

var keygenCmd = &cobra.Command{
	Use:   "keygen <name>",
	Short: "Generate the signing key for an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig()
		if err != nil {
			return err
		}

		path := wallet.KeyPath(cfg.Wallet.KeyDir, args[0])
		var signer *signing.Signer
		if keygenForce {
			if signer, err = signing.NewRandomSigner(); err != nil {
				return err
			}
			if err := signer.SavePrivateKey(path); err != nil {
				return err
			}
		} else {
			var created bool
			signer, created, err = wallet.LoadOrCreateSigner(cfg.Wallet.KeyDir, args[0])
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Key %s already exists, use --force to replace it.\n", path)
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Public key: %s\n", signer.PublicKeyHex())
		fmt.Fprintf(cmd.OutOrStdout(), "Key file:   %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)

	keygenCmd.Flags().BoolVarP(&keygenForce, "force", "f", false, "overwrite an existing key")
}
