package main

import (
	"fmt"
	"strconv"

	"github.com/kdimtricp/cinesuggest/internal/app"
	"github.com/kdimtricp/cinesuggest/internal/poster"
	"github.com/spf13/cobra"
)

func newCheckTMDbCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check-tmdb <movie-id>",
		Short: "Fetch one movie from TMDb and print its poster URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("movie id must be an integer: %q", args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "TMDb API key: %s\n", cfg.TMDb.RedactedKey())
			if cfg.TMDb.APIKey == "" {
				fmt.Fprintln(out, "Warning: TMDB_API_KEY is not set; requests will be rejected")
			}

			fetcher := app.NewMovieFetcher(cfg)
			details, err := fetcher.GetMovie(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("TMDb lookup failed: %w", err)
			}

			resolver := poster.NewTMDbResolver(fetcher, cfg.TMDb.ImageBaseURL, poster.Placeholders{
				NoPoster: cfg.TMDb.NoPosterURL,
				Error:    cfg.TMDb.ErrorPosterURL,
			})

			fmt.Fprintf(out, "Title:        %s\n", details.Title)
			fmt.Fprintf(out, "Release date: %s\n", details.ReleaseDate)
			fmt.Fprintf(out, "Rating:       %.1f\n", details.VoteAverage)
			if details.PosterPath == nil || *details.PosterPath == "" {
				fmt.Fprintf(out, "Poster:       none (placeholder %s)\n", cfg.TMDb.NoPosterURL)
			} else {
				fmt.Fprintf(out, "Poster:       %s\n", resolver.ImageURL(*details.PosterPath))
			}
			return nil
		},
	}
}
