package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	"github.com/systmms/secretchain/internal/execenv"
	"github.com/systmms/secretchain/pkg/provider"
)

func NewExecCommand(cfg *config.Config) *cobra.Command {
	var (
		keys         []string
		keepExisting bool
		printVars    bool
	)

	cmd := &cobra.Command{
		Use:   "exec [flags] -- COMMAND [ARGS...]",
		Short: "Run a command with secrets in its environment",
		Long: `Resolve secrets and run a command with them added to its environment.

The secrets listed under 'required' in the configuration are resolved
unless --keys is given. A lookup that times out or finds the provider
unavailable is retried once. If any secret still cannot be resolved the
command is not started. The child's exit status is passed through.

Examples:
  # Start the server with JWT_SECRET and DATABASE_URL injected
  secretchain exec -- ./server

  # Inject specific keys, keeping values already exported
  secretchain exec --keys API_KEY --keep-existing -- npm start`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, release, err := loadProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			if len(keys) == 0 {
				for _, r := range cfg.Definition.Required {
					keys = append(keys, r.Key)
				}
			}

			secrets, err := collectWithRetry(ctx, cfg, p, keys, provider.GetOptions{})
			if err != nil {
				return err
			}

			executor := execenv.New(cfg.Logger)
			executor.Stdin = cmd.InOrStdin()
			executor.Stdout = cmd.OutOrStdout()
			executor.Stderr = cmd.ErrOrStderr()

			return executor.Exec(ctx, execenv.Options{
				Command:      args,
				Secrets:      secrets,
				KeepExisting: keepExisting,
				PrintVars:    printVars,
			})
		},
	}

	cmd.Flags().StringSliceVar(&keys, "keys", nil, "Secrets to inject (default: the configured required secrets)")
	cmd.Flags().BoolVar(&keepExisting, "keep-existing", false, "Do not replace variables already set in the environment")
	cmd.Flags().BoolVar(&printVars, "print", false, "Print injected names with masked values to stderr")

	return cmd
}
