package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/kdimtricp/cinesuggest/internal/app"
	"github.com/kdimtricp/cinesuggest/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg

			db, err := database.NewDB(app.DatabaseConfig(cfg))
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			migrator := database.NewMigrator(db.Conn(), db.Type())
			out := cmd.OutOrStdout()

			if status {
				statuses, err := migrator.Status(cfg.Database.MigrationsPath)
				if err != nil {
					return err
				}

				fmt.Fprintln(out, "Migration Status:")
				fmt.Fprintln(out, "=================")
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Version, s.Name, state)
				}
				return tw.Flush()
			}

			if err := migrator.Run(cfg.Database.MigrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(out, "Migrations completed successfully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Show migration status only")
	return cmd
}
