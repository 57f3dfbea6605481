package main

import (
	"fmt"
	"os"

	"github.com/kdimtricp/cinesuggest/internal/app"
	"github.com/kdimtricp/cinesuggest/internal/config"
	"github.com/spf13/cobra"
)

// cli holds state shared by the subcommands of one invocation.
type cli struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "cinesuggest",
		Short:        "Manage CineSuggest artifacts and query recommendations",
		SilenceUsage: true,
		Long: `cinesuggest loads the precomputed movie catalog and similarity matrix
into the database, applies migrations, and runs recommendations from the
command line using the same configuration as the server.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				if err := os.Setenv(config.ConfigPathEnvVar, c.configPath); err != nil {
					return err
				}
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cannot load config: %w", err)
			}
			c.cfg = cfg
			app.InitLogging(cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a YAML config file (overrides CONFIG_PATH)")

	root.AddCommand(
		newImportCmd(c),
		newMigrateCmd(c),
		newCheckTMDbCmd(c),
		newRecommendCmd(c),
	)
	return root
}
