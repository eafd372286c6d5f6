package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/pkg/provider"
)

func NewKeysCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List the secret names the provider can resolve",
		Long: `List the names of the secrets the configured provider would resolve.

Values are never printed. For a hybrid provider the names of both the
primary and the fallback are listed.

Examples:
  secretchain keys
  secretchain keys --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, release, err := loadProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer release()

			lister, ok := p.(provider.KeyLister)
			if !ok {
				return dserrors.UserError{
					Message:    fmt.Sprintf("The %s provider cannot list its keys", p.Type()),
					Suggestion: "Use 'secretchain get KEY' to check individual secrets",
				}
			}

			keys := lister.AvailableKeys()
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, keys)
			}
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
