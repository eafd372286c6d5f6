package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/validation"
)

func NewValidateCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every required secret resolves",
		Long: `Resolve every secret listed under 'required' in the configuration and
report the ones that are missing or too short. Values are never printed.

Without a 'required' section JWT_SECRET and DATABASE_URL are checked.

Examples:
  secretchain validate
  secretchain validate --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, release, err := loadProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			result := validation.CheckRequired(ctx, p, validation.FromConfig(cfg.Definition.Required), cfg.Logger)

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(out, result); err != nil {
					return err
				}
			} else {
				for _, missing := range result.Missing {
					fmt.Fprintf(out, "✗ %s\n", missing)
				}
				for _, warning := range result.Warnings {
					fmt.Fprintf(out, "! %s\n", warning)
				}
				if result.Valid {
					fmt.Fprintln(out, "✓ All required secrets resolved")
				}
			}

			return requireValid(result)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func requireValid(result *validation.Result) error {
	if result.Valid {
		return nil
	}
	return dserrors.UserError{
		Message:    fmt.Sprintf("%d required secret(s) missing", len(result.Missing)),
		Details:    fmt.Sprintf("%v", result.Missing),
		Suggestion: "Export the variables or add them to the secrets file",
	}
}
