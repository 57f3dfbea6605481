package database

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/kdimtricp/cinesuggest/internal/catalog"
)

// ArtifactRepository stores the catalog and similarity matrix in the
// movies and similarity tables, one row per catalog index.
type ArtifactRepository struct {
	db *DB
}

func NewArtifactRepository(db *DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// ReplaceAll swaps the stored artifacts for store in a single transaction.
func (r *ArtifactRepository) ReplaceAll(ctx context.Context, store *catalog.Store) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM similarity"); err != nil {
		return fmt.Errorf("failed to clear similarity: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM movies"); err != nil {
		return fmt.Errorf("failed to clear movies: %w", err)
	}

	movieStmt, err := tx.PrepareContext(ctx, r.db.rebind("INSERT INTO movies (idx, tmdb_id, title) VALUES (?, ?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare movie insert: %w", err)
	}
	defer movieStmt.Close()

	simStmt, err := tx.PrepareContext(ctx, r.db.rebind("INSERT INTO similarity (idx, scores) VALUES (?, ?)"))
	if err != nil {
		return fmt.Errorf("failed to prepare similarity insert: %w", err)
	}
	defer simStmt.Close()

	for i := 0; i < store.Len(); i++ {
		m := store.Movie(i)
		if _, err := movieStmt.ExecContext(ctx, i, m.ID, m.Title); err != nil {
			return fmt.Errorf("failed to insert movie %d: %w", i, err)
		}

		scores, err := json.Marshal(store.Row(i))
		if err != nil {
			return fmt.Errorf("failed to encode similarity row %d: %w", i, err)
		}
		if _, err := simStmt.ExecContext(ctx, i, string(scores)); err != nil {
			return fmt.Errorf("failed to insert similarity row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit artifacts: %w", err)
	}
	return nil
}

// LoadStore reads the artifacts back. An empty movies table is reported as
// catalog.ErrArtifactMissing.
func (r *ArtifactRepository) LoadStore(ctx context.Context) (*catalog.Store, error) {
	movies, err := r.loadMovies(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, fmt.Errorf("%w: movies table is empty", catalog.ErrArtifactMissing)
	}

	matrix, err := r.loadMatrix(ctx, len(movies))
	if err != nil {
		return nil, err
	}

	return catalog.NewStore(movies, matrix)
}

// loadMovies and loadMatrix each close their rows before returning; SQLite
// runs with a single connection.
func (r *ArtifactRepository) loadMovies(ctx context.Context) ([]catalog.Movie, error) {
	rows, err := r.db.conn.QueryContext(ctx, "SELECT idx, tmdb_id, title FROM movies ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var movies []catalog.Movie
	for rows.Next() {
		var idx int
		var m catalog.Movie
		if err := rows.Scan(&idx, &m.ID, &m.Title); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		if idx != len(movies) {
			return nil, fmt.Errorf("%w: movie index %d out of sequence", catalog.ErrShapeMismatch, idx)
		}
		movies = append(movies, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}
	return movies, nil
}

func (r *ArtifactRepository) loadMatrix(ctx context.Context, n int) ([][]float64, error) {
	rows, err := r.db.conn.QueryContext(ctx, "SELECT idx, scores FROM similarity ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("failed to query similarity: %w", err)
	}
	defer rows.Close()

	matrix := make([][]float64, 0, n)
	for rows.Next() {
		var idx int
		var raw string
		if err := rows.Scan(&idx, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan similarity row: %w", err)
		}
		if idx != len(matrix) {
			return nil, fmt.Errorf("%w: similarity index %d out of sequence", catalog.ErrShapeMismatch, idx)
		}
		var row []float64
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("failed to decode similarity row %d: %w", idx, err)
		}
		matrix = append(matrix, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating similarity: %w", err)
	}
	return matrix, nil
}

func (r *ArtifactRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}
