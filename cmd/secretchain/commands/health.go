package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/providers"
	"github.com/systmms/secretchain/pkg/provider"
)

// ProviderHealth is one row of the health report.
type ProviderHealth struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Healthy bool   `json:"healthy"`
}

func NewHealthCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the configured provider is usable",
		Long: `Run the provider health check and exit non-zero when it fails.

For a hybrid provider the primary and fallback are reported separately.
In non-strict mode the hybrid is healthy while either of them is.

Examples:
  secretchain health
  secretchain health --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, release, err := loadProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			results := checkHealth(ctx, p)

			out := cmd.OutOrStdout()
			if jsonOutput {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			} else {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "PROVIDER\tTYPE\tSTATUS")
				for _, r := range results {
					status := "healthy"
					if !r.Healthy {
						status = "unhealthy"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Type, status)
				}
				_ = w.Flush()
			}

			if !results[0].Healthy {
				return dserrors.UserError{
					Message:    "Provider is unhealthy",
					Suggestion: "Check that the secrets file exists and is valid, or run with --debug",
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

// checkHealth checks the whole tree first, then each child of a hybrid.
func checkHealth(ctx context.Context, p provider.Provider) []ProviderHealth {
	results := []ProviderHealth{{Name: "provider", Type: p.Type().String(), Healthy: p.HealthCheck(ctx)}}

	if h, ok := p.(*providers.HybridProvider); ok {
		results = append(results, ProviderHealth{Name: "primary", Type: h.Primary().Type().String(), Healthy: h.Primary().HealthCheck(ctx)})
		if h.Fallback() != nil {
			results = append(results, ProviderHealth{Name: "fallback", Type: h.Fallback().Type().String(), Healthy: h.Fallback().HealthCheck(ctx)})
		}
	}
	return results
}
