package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kdimtricp/cinesuggest/internal/storage"
)

func sampleMovies() []Movie {
	return []Movie{{1, "A"}, {2, "B"}, {3, "C"}}
}

func sampleMatrix() [][]float64 {
	return [][]float64{
		{1.0, 0.5, 0.2},
		{0.5, 1.0, 0.7},
		{0.2, 0.7, 1.0},
	}
}

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		movies  []Movie
		matrix  [][]float64
		wantErr error
	}{
		{"valid", sampleMovies(), sampleMatrix(), nil},
		{"empty catalog", nil, nil, ErrEmptyCatalog},
		{"too few rows", sampleMovies(), sampleMatrix()[:2], ErrShapeMismatch},
		{"ragged row", sampleMovies(), [][]float64{{1, 0, 0}, {0, 1}, {0, 0, 1}}, ErrShapeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.movies, tt.matrix)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStore_IsolatedFromInputs(t *testing.T) {
	movies := sampleMovies()
	matrix := sampleMatrix()
	store, err := NewStore(movies, matrix)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	movies[0].Title = "changed"
	matrix[0][1] = 99

	if store.Movie(0).Title != "A" {
		t.Errorf("Store catalog was mutated through the input slice")
	}
	if store.Row(0)[1] != 0.5 {
		t.Errorf("Store matrix was mutated through the input slice")
	}

	out := store.Movies()
	out[1].Title = "changed"
	if store.Movie(1).Title != "B" {
		t.Errorf("Store catalog was mutated through Movies()")
	}
}

func TestStore_Lookups(t *testing.T) {
	store, err := NewStore([]Movie{{10, "A"}, {20, "B"}, {30, "A"}}, [][]float64{
		{1, 0, 0}, {0, 1, 0}, {0, 0, 1},
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	if got := store.IndexOf("A"); got != 0 {
		t.Errorf("IndexOf(A) = %d, expected first match 0", got)
	}
	if got := store.IndexOf("missing"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, expected -1", got)
	}
	if got := store.IndexOfID(30); got != 2 {
		t.Errorf("IndexOfID(30) = %d, expected 2", got)
	}
	if got := store.IndexOfID(99); got != -1 {
		t.Errorf("IndexOfID(99) = %d, expected -1", got)
	}

	dups := store.DuplicateTitles()
	if len(dups) != 1 || dups[0] != "A" {
		t.Errorf("DuplicateTitles() = %v, expected [A]", dups)
	}

	titles := store.Titles()
	if len(titles) != 3 || titles[1] != "B" {
		t.Errorf("Titles() = %v", titles)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	t.Run("MissingMovies", func(t *testing.T) {
		_, err := LoadFiles(st, "movies.json", "similarity.json")
		if !errors.Is(err, ErrArtifactMissing) {
			t.Errorf("Expected ErrArtifactMissing, got %v", err)
		}
	})

	write("movies.json", `[{"id": 19995, "title": "Avatar"}, {"id": 285, "title": "Pirates of the Caribbean: At World's End"}]`)

	t.Run("MissingSimilarity", func(t *testing.T) {
		_, err := LoadFiles(st, "movies.json", "similarity.json")
		if !errors.Is(err, ErrArtifactMissing) {
			t.Errorf("Expected ErrArtifactMissing, got %v", err)
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		write("broken.json", `[[1.0, `)
		_, err := LoadFiles(st, "movies.json", "broken.json")
		if err == nil || errors.Is(err, ErrArtifactMissing) {
			t.Errorf("Expected decode error, got %v", err)
		}
	})

	write("similarity.json", `[[1.0, 0.25], [0.25, 1.0]]`)

	t.Run("Valid", func(t *testing.T) {
		store, err := LoadFiles(st, "movies.json", "similarity.json")
		if err != nil {
			t.Fatalf("LoadFiles failed: %v", err)
		}
		if store.Len() != 2 {
			t.Errorf("Expected 2 movies, got %d", store.Len())
		}
		if store.Movie(0).ID != 19995 || store.Movie(0).Title != "Avatar" {
			t.Errorf("Unexpected first movie %+v", store.Movie(0))
		}
		if store.Row(1)[0] != 0.25 {
			t.Errorf("Unexpected similarity %v", store.Row(1)[0])
		}
	})
}
