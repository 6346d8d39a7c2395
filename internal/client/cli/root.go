package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// NewRootCmd builds the notekeeper command. Without a subcommand it starts
// the interactive REPL.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        *config.Config
		logger     logging.Logger
	)

	root := &cobra.Command{
		Use:           "notekeeper",
		Short:         "Notes with AI summaries, tags, grammar checks and glossaries",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger = logging.NewJSON(cmd.ErrOrStderr(), cfg.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			NewApp(cfg, logger).Run(cmd.Context())
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to JSON config file")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp(cfg, logger)
			if err := app.auth.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", cfg.ServerURL, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok", cfg.ServerURL)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "signup",
		Short: "Create an account, then continue in the REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := NewApp(cfg, logger)
			app.baseCtx = cmd.Context()
			if err := app.SignUp(cmd.Context()); err != nil {
				return fmt.Errorf("%s", describe(err))
			}
			app.Run(cmd.Context())
			return nil
		},
	})

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
