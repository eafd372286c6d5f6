package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	dserrors "github.com/systmms/secretchain/internal/errors"
	"github.com/systmms/secretchain/pkg/provider"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var (
		bypassCache bool
		timeout     time.Duration
		jsonOutput  bool
		bestEffort  bool
	)

	cmd := &cobra.Command{
		Use:   "get KEY...",
		Short: "Resolve one or more secrets",
		Long: `Resolve secrets through the configured provider and print them to stdout.

With a single key only the raw value is printed, making it suitable for
scripting. With several keys each secret is printed as KEY=VALUE.

By default a single unresolvable key fails the whole command. Use
--best-effort to print whatever resolved and report the rest on stderr.
Lookups that time out or find the provider unavailable are retried once.

Examples:
  # Get a single value
  secretchain get JWT_SECRET

  # Several values with metadata in JSON format
  secretchain get JWT_SECRET DATABASE_URL --json

  # Skip the cache and give up after two seconds
  secretchain get DATABASE_URL --bypass-cache --timeout 2s

  # Use in scripts
  export DB_URL=$(secretchain get DATABASE_URL)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return dserrors.UserError{
					Message:    "At least one secret key is required",
					Suggestion: "Pass the key names to resolve, e.g. 'secretchain get JWT_SECRET'",
				}
			}
			if timeout < 0 {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Invalid timeout: %s", timeout),
					Suggestion: "Use a positive duration such as --timeout 5s",
				}
			}

			ctx := cmd.Context()
			p, release, err := loadProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			opts := provider.GetOptions{BypassCache: bypassCache, Timeout: timeout}

			var secrets map[string]*provider.SecretValue
			switch {
			case bestEffort:
				found, failed := provider.ResolveBestEffort(ctx, p, args, opts)
				for _, key := range sortedKeys(failed) {
					cfg.Logger.Warn("Could not resolve %s: %v", key, failed[key])
				}
				if len(found) == 0 {
					return failed[args[0]]
				}
				secrets = found
			case len(args) == 1:
				value, err := getWithRetry(ctx, cfg, p, args[0], opts)
				if err != nil {
					return err
				}
				secrets = map[string]*provider.SecretValue{args[0]: value}
			default:
				secrets, err = collectWithRetry(ctx, cfg, p, args, opts)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, secrets)
			}

			if len(args) == 1 {
				fmt.Fprint(out, secrets[args[0]].Value)
				return nil
			}
			for _, key := range args {
				if value, ok := secrets[key]; ok {
					fmt.Fprintf(out, "%s=%s\n", key, value.Value)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&bypassCache, "bypass-cache", false, "Skip the provider cache for this lookup")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up on each lookup after this long (0 = no timeout)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format with metadata")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Print whatever resolves instead of failing on the first missing key")

	return cmd
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
