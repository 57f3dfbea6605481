package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kdimtricp/cinesuggest/internal/catalog"
	"github.com/kdimtricp/cinesuggest/internal/metrics"
	"github.com/kdimtricp/cinesuggest/internal/poster"
)

const DefaultCount = 5

var ErrNotFound = errors.New("movie not found in catalog")

type Recommendation struct {
	Movie     catalog.Movie
	Score     float64
	PosterURL string
	Poster    poster.Outcome
}

type Engine struct {
	store   *catalog.Store
	posters poster.Resolver
	count   int
}

type Config struct {
	Count int
}

func NewEngine(store *catalog.Store, posters poster.Resolver, config Config) *Engine {
	if config.Count <= 0 {
		config.Count = DefaultCount
	}
	return &Engine{
		store:   store,
		posters: posters,
		count:   config.Count,
	}
}

func (e *Engine) Store() *catalog.Store {
	return e.store
}

// Recommend returns up to Count movies most similar to the first catalog
// entry titled title, best first. Fewer are returned when the catalog is
// too small.
func (e *Engine) Recommend(ctx context.Context, title string) ([]Recommendation, error) {
	idx := e.store.IndexOf(title)
	if idx < 0 {
		metrics.RecommendationsTotal.WithLabelValues("not_found").Inc()
		return []Recommendation{}, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return e.recommendIndex(ctx, idx), nil
}

// RecommendByID is Recommend keyed by TMDb id, for catalogs where titles
// are not unique.
func (e *Engine) RecommendByID(ctx context.Context, movieID int) ([]Recommendation, error) {
	idx := e.store.IndexOfID(movieID)
	if idx < 0 {
		metrics.RecommendationsTotal.WithLabelValues("not_found").Inc()
		return []Recommendation{}, fmt.Errorf("%w: id %d", ErrNotFound, movieID)
	}
	return e.recommendIndex(ctx, idx), nil
}

// RecommendTitles returns parallel slices of titles and poster URLs. Both
// are empty when the title is unknown.
func (e *Engine) RecommendTitles(ctx context.Context, title string) ([]string, []string, error) {
	recs, err := e.Recommend(ctx, title)
	if err != nil {
		return []string{}, []string{}, err
	}
	titles := make([]string, len(recs))
	posters := make([]string, len(recs))
	for i, r := range recs {
		titles[i] = r.Movie.Title
		posters[i] = r.PosterURL
	}
	return titles, posters, nil
}

func (e *Engine) recommendIndex(ctx context.Context, idx int) []Recommendation {
	start := time.Now()
	defer func() {
		metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	}()

	ranked := Rank(e.store, idx, e.count)

	recs := make([]Recommendation, 0, len(ranked))
	for _, n := range ranked {
		m := e.store.Movie(n.Index)
		p := e.posters.Resolve(ctx, m.ID)
		recs = append(recs, Recommendation{
			Movie:     m,
			Score:     n.Score,
			PosterURL: p.URL,
			Poster:    p.Outcome,
		})
	}

	metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	return recs
}
