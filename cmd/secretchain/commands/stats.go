package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/internal/providers"
	"github.com/systmms/secretchain/pkg/provider"
)

// StatsReport is printed by the stats command.
type StatsReport struct {
	Cache     providers.CacheStats      `json:"cache"`
	Providers providers.ProviderSummary `json:"providers"`
}

func NewStatsCommand(cfg *config.Config) *cobra.Command {
	var warm []string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show hybrid cache statistics and provider layout",
		Long: `Print the hybrid provider's cache statistics and provider summary as JSON.

The cache of a fresh process is empty; use --warm to resolve some keys
first and see which provider served them.

Examples:
  secretchain stats
  secretchain stats --warm JWT_SECRET,DATABASE_URL`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, release, err := loadProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			h, ok := p.(*providers.HybridProvider)
			if !ok {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Statistics are only available for the hybrid provider, not %s", p.Type()),
					Suggestion: "Set 'provider.type: hybrid' in your configuration",
				}
			}

			for _, key := range warm {
				if _, err := h.GetSecret(ctx, key, provider.GetOptions{}); err != nil {
					cfg.Logger.Warn("Could not resolve %s: %v", key, err)
				}
			}

			return writeJSON(cmd.OutOrStdout(), StatsReport{
				Cache:     h.CacheStats(),
				Providers: h.ProviderSummary(),
			})
		},
	}

	cmd.Flags().StringSliceVar(&warm, "warm", nil, "Resolve these keys before reporting")

	return cmd
}
