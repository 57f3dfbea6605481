package main

import (
	"fmt"
	"path/filepath"

	"github.com/kdimtricp/cinesuggest/internal/app"
	"github.com/kdimtricp/cinesuggest/internal/catalog"
	"github.com/kdimtricp/cinesuggest/internal/database"
	"github.com/kdimtricp/cinesuggest/internal/storage"
	"github.com/spf13/cobra"
)

func newImportCmd(c *cli) *cobra.Command {
	var (
		moviesPath     string
		similarityPath string
		copyArtifacts  bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load movies.json and similarity.json into the database",
		Long: `import validates a catalog and similarity matrix and replaces the
movies and similarity tables with them. With --copy the files are also
written into the configured artifacts directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg
			if moviesPath == "" {
				moviesPath = filepath.Join(cfg.Artifacts.Dir, cfg.Artifacts.MoviesFile)
			}
			if similarityPath == "" {
				similarityPath = filepath.Join(cfg.Artifacts.Dir, cfg.Artifacts.SimilarityFile)
			}

			store, err := loadPair(moviesPath, similarityPath)
			if err != nil {
				return err
			}

			if copyArtifacts {
				if err := copyToArtifacts(cfg.Artifacts.Dir, map[string]string{
					moviesPath:     cfg.Artifacts.MoviesFile,
					similarityPath: cfg.Artifacts.SimilarityFile,
				}); err != nil {
					return err
				}
			}

			db, err := app.OpenDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := database.NewArtifactRepository(db)
			if err := repo.ReplaceAll(cmd.Context(), store); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movies into %s database\n", store.Len(), db.Type())
			if dups := store.DuplicateTitles(); len(dups) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: %d duplicate titles; use --id lookups for them\n", len(dups))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&moviesPath, "movies", "", "Catalog JSON file (default <artifacts.dir>/<artifacts.movies_file>)")
	cmd.Flags().StringVar(&similarityPath, "similarity", "", "Similarity matrix JSON file (default <artifacts.dir>/<artifacts.similarity_file>)")
	cmd.Flags().BoolVar(&copyArtifacts, "copy", false, "Also copy the files into the artifacts directory")
	return cmd
}

// loadPair reads two artifact files that may live in different directories.
func loadPair(moviesPath, similarityPath string) (*catalog.Store, error) {
	moviesDir, moviesName := splitPath(moviesPath)
	simDir, simName := splitPath(similarityPath)
	if moviesDir == simDir {
		st, err := storage.OpenLocalStorage(moviesDir)
		if err != nil {
			return nil, err
		}
		return catalog.LoadFiles(st, moviesName, simName)
	}

	moviesStore, err := storage.OpenLocalStorage(moviesDir)
	if err != nil {
		return nil, err
	}
	simStore, err := storage.OpenLocalStorage(simDir)
	if err != nil {
		return nil, err
	}
	return catalog.LoadSplit(moviesStore, moviesName, simStore, simName)
}

func copyToArtifacts(dir string, files map[string]string) error {
	dst, err := storage.NewLocalStorage(dir)
	if err != nil {
		return err
	}
	for src, name := range files {
		if filepath.Clean(src) == filepath.Join(dst.BasePath(), name) {
			continue
		}
		srcDir, srcName := splitPath(src)
		from, err := storage.OpenLocalStorage(srcDir)
		if err != nil {
			return err
		}
		f, err := from.OpenFile(srcName)
		if err != nil {
			return err
		}
		_, err = dst.SaveFile(name, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to copy %s: %w", src, err)
		}
	}
	return nil
}

// splitPath is filepath.Split with a cleaned, never-empty directory.
func splitPath(path string) (dir, name string) {
	dir, name = filepath.Split(path)
	return filepath.Clean(dir), name
}
