package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/kdimtricp/cinesuggest/internal/app"
	"github.com/kdimtricp/cinesuggest/internal/database"
	"github.com/kdimtricp/cinesuggest/internal/poster"
	"github.com/kdimtricp/cinesuggest/internal/recommend"
	"github.com/spf13/cobra"
)

func newRecommendCmd(c *cli) *cobra.Command {
	var (
		byID    bool
		count   int
		noImage bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Print the movies most similar to a catalog title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg

			var db *database.DB
			if cfg.Artifacts.Source == "database" {
				var err error
				db, err = app.OpenDatabase(cfg)
				if err != nil {
					return err
				}
				defer db.Close()
			}

			store, err := app.LoadStore(cmd.Context(), cfg, db)
			if err != nil {
				return fmt.Errorf("failed to load artifacts: %w", err)
			}

			if count <= 0 {
				count = cfg.Recommend.Count
			}
			var resolver poster.Resolver = skipPosters{}
			if !noImage {
				resolver = app.NewPosterResolver(cfg)
			}
			engine := recommend.NewEngine(store, resolver, recommend.Config{Count: count})

			query := strings.Join(args, " ")
			var recs []recommend.Recommendation
			if byID {
				id, convErr := strconv.Atoi(query)
				if convErr != nil {
					return fmt.Errorf("--id expects an integer, got %q", query)
				}
				recs, err = engine.RecommendByID(cmd.Context(), id)
			} else {
				recs, err = engine.Recommend(cmd.Context(), query)
			}
			if errors.Is(err, recommend.ErrNotFound) {
				return fmt.Errorf("movie '%s' not found in the dataset", query)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tTITLE\tSCORE\tPOSTER")
			for i, rec := range recs {
				fmt.Fprintf(tw, "%d\t%s\t%.4f\t%s\n", i+1, rec.Movie.Title, rec.Score, rec.PosterURL)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&byID, "id", false, "Treat the argument as a TMDb movie id")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of recommendations (default recommend.count)")
	cmd.Flags().BoolVar(&noImage, "no-posters", false, "Skip TMDb poster lookups")
	return cmd
}

type skipPosters struct{}

func (skipPosters) Resolve(ctx context.Context, movieID int) poster.Poster {
	return poster.Poster{Outcome: poster.OutcomeNoPoster}
}
