// Package catalog holds the precomputed movie catalog and similarity
// matrix. A Store is built once at startup and never mutated, so it can be
// shared freely between request goroutines.
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactMissing = errors.New("artifact missing")
	ErrEmptyCatalog    = errors.New("catalog is empty")
	ErrShapeMismatch   = errors.New("similarity matrix does not match catalog")
)

// Movie is one catalog entry. ID is the TMDb movie id.
type Movie struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Store pairs catalog[i] with similarity[i] for every i.
type Store struct {
	movies     []Movie
	similarity [][]float64
}

// NewStore validates that similarity is len(movies) x len(movies) and takes
// private copies of both inputs.
func NewStore(movies []Movie, similarity [][]float64) (*Store, error) {
	n := len(movies)
	if n == 0 {
		return nil, ErrEmptyCatalog
	}
	if len(similarity) != n {
		return nil, fmt.Errorf("%w: %d movies, %d matrix rows", ErrShapeMismatch, n, len(similarity))
	}

	rows := make([][]float64, n)
	for i, row := range similarity {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrShapeMismatch, i, len(row), n)
		}
		rows[i] = append([]float64(nil), row...)
	}

	return &Store{
		movies:     append([]Movie(nil), movies...),
		similarity: rows,
	}, nil
}

func (s *Store) Len() int {
	return len(s.movies)
}

func (s *Store) Movie(i int) Movie {
	return s.movies[i]
}

// Movies returns a copy of the catalog in index order.
func (s *Store) Movies() []Movie {
	return append([]Movie(nil), s.movies...)
}

func (s *Store) Titles() []string {
	titles := make([]string, len(s.movies))
	for i, m := range s.movies {
		titles[i] = m.Title
	}
	return titles
}

// Row returns the similarity scores of movie i against every catalog entry.
// Callers must not modify the returned slice.
func (s *Store) Row(i int) []float64 {
	return s.similarity[i]
}

// IndexOf returns the index of the first movie titled title, or -1.
func (s *Store) IndexOf(title string) int {
	for i, m := range s.movies {
		if m.Title == title {
			return i
		}
	}
	return -1
}

// IndexOfID returns the index of the first movie with the given TMDb id, or -1.
func (s *Store) IndexOfID(id int) int {
	for i, m := range s.movies {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// DuplicateTitles lists titles that appear more than once, in first-seen order.
func (s *Store) DuplicateTitles() []string {
	seen := make(map[string]int, len(s.movies))
	var dups []string
	for _, m := range s.movies {
		seen[m.Title]++
		if seen[m.Title] == 2 {
			dups = append(dups, m.Title)
		}
	}
	return dups
}
