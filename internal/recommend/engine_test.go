package recommend

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/kdimtricp/cinesuggest/internal/catalog"
	"github.com/kdimtricp/cinesuggest/internal/poster"
)

type recordingResolver struct {
	calls []int
}

func (r *recordingResolver) Resolve(ctx context.Context, movieID int) poster.Poster {
	r.calls = append(r.calls, movieID)
	return poster.Poster{URL: fmt.Sprintf("https://img.test/%d.jpg", movieID), Outcome: poster.OutcomeFound}
}

func mustStore(t *testing.T, movies []catalog.Movie, matrix [][]float64) *catalog.Store {
	t.Helper()
	store, err := catalog.NewStore(movies, matrix)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

// identityWithRow builds an n x n identity matrix and replaces row idx.
func identityWithRow(n, idx int, row []float64) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	m[idx] = row
	return m
}

func letters(n int) []catalog.Movie {
	movies := make([]catalog.Movie, n)
	for i := range movies {
		movies[i] = catalog.Movie{ID: i + 1, Title: string(rune('A' + i))}
	}
	return movies
}

func titlesOf(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Movie.Title
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecommend_SixMovieScenario(t *testing.T) {
	store := mustStore(t, letters(6), identityWithRow(6, 0, []float64{1.0, 0.9, 0.1, 0.8, 0.5, 0.05}))
	resolver := &recordingResolver{}
	engine := NewEngine(store, resolver, Config{})

	recs, err := engine.Recommend(context.Background(), "A")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	expected := []string{"B", "D", "E", "C", "F"}
	if got := titlesOf(recs); !equalStrings(got, expected) {
		t.Errorf("Recommend(A) = %v, expected %v", got, expected)
	}

	wantCalls := []int{2, 4, 5, 3, 6}
	if len(resolver.calls) != len(wantCalls) {
		t.Fatalf("Expected %d poster lookups, got %d", len(wantCalls), len(resolver.calls))
	}
	for i, id := range wantCalls {
		if resolver.calls[i] != id {
			t.Errorf("Poster lookup %d was for id %d, expected %d", i, resolver.calls[i], id)
		}
	}

	if recs[0].PosterURL != "https://img.test/2.jpg" || recs[0].Score != 0.9 {
		t.Errorf("Unexpected first recommendation %+v", recs[0])
	}
}

func TestRecommend_Properties(t *testing.T) {
	const n = 40
	rng := rand.New(rand.NewSource(7))
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		matrix[i][i] = 1
		for j := i + 1; j < n; j++ {
			// Coarse scores so ties are common.
			s := float64(rng.Intn(10)) / 10
			matrix[i][j], matrix[j][i] = s, s
		}
	}
	movies := make([]catalog.Movie, n)
	for i := range movies {
		movies[i] = catalog.Movie{ID: 1000 + i, Title: fmt.Sprintf("Movie %02d", i)}
	}
	store := mustStore(t, movies, matrix)
	engine := NewEngine(store, &recordingResolver{}, Config{Count: 5})

	for i, m := range movies {
		recs, err := engine.Recommend(context.Background(), m.Title)
		if err != nil {
			t.Fatalf("Recommend(%q) failed: %v", m.Title, err)
		}
		if len(recs) != 5 {
			t.Fatalf("Recommend(%q) returned %d results, expected 5", m.Title, len(recs))
		}

		seen := map[string]bool{}
		for k, r := range recs {
			if r.Movie.Title == m.Title {
				t.Errorf("Recommend(%q) returned the input title", m.Title)
			}
			if seen[r.Movie.Title] {
				t.Errorf("Recommend(%q) returned %q twice", m.Title, r.Movie.Title)
			}
			seen[r.Movie.Title] = true

			j := store.IndexOf(r.Movie.Title)
			if r.Score != matrix[i][j] {
				t.Errorf("Score for %q = %v, expected %v", r.Movie.Title, r.Score, matrix[i][j])
			}
			if k > 0 {
				prev := recs[k-1]
				if prev.Score < r.Score {
					t.Errorf("Recommend(%q) not ordered: %v before %v", m.Title, prev.Score, r.Score)
				}
				if prev.Score == r.Score && store.IndexOf(prev.Movie.Title) > j {
					t.Errorf("Recommend(%q) tie not in catalog order", m.Title)
				}
			}
		}
	}
}

func TestRecommend_NotFound(t *testing.T) {
	resolver := &recordingResolver{}
	engine := NewEngine(mustStore(t, letters(6), identityWithRow(6, 0, []float64{1, 0, 0, 0, 0, 0})), resolver, Config{})

	recs, err := engine.Recommend(context.Background(), "Z")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if recs == nil || len(recs) != 0 {
		t.Errorf("Expected empty non-nil results, got %v", recs)
	}

	titles, posters, err := engine.RecommendTitles(context.Background(), "Z")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if len(titles) != 0 || len(posters) != 0 {
		t.Errorf("Expected two empty sequences, got %v and %v", titles, posters)
	}

	if len(resolver.calls) != 0 {
		t.Errorf("Expected no poster lookups, got %d", len(resolver.calls))
	}
}

func TestRecommend_SmallCatalog(t *testing.T) {
	store := mustStore(t, letters(3), identityWithRow(3, 1, []float64{0.3, 1, 0.6}))
	engine := NewEngine(store, &recordingResolver{}, Config{})

	recs, err := engine.Recommend(context.Background(), "B")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got := titlesOf(recs); !equalStrings(got, []string{"C", "A"}) {
		t.Errorf("Recommend(B) = %v, expected [C A]", got)
	}

	single := NewEngine(mustStore(t, letters(1), [][]float64{{1}}), &recordingResolver{}, Config{})
	recs, err = single.Recommend(context.Background(), "A")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("Expected no recommendations from a one-movie catalog, got %v", titlesOf(recs))
	}
}

func TestRecommend_SelfNotMaximal(t *testing.T) {
	// B outranks the self score; the self entry must still be skipped
	// rather than whatever happens to sort first.
	store := mustStore(t, letters(7), identityWithRow(7, 0, []float64{0.5, 0.9, 0.5, 0.4, 0.3, 0.2, 0.1}))
	engine := NewEngine(store, &recordingResolver{}, Config{})

	recs, err := engine.Recommend(context.Background(), "A")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got := titlesOf(recs); !equalStrings(got, []string{"B", "C", "D", "E", "F"}) {
		t.Errorf("Recommend(A) = %v, expected [B C D E F]", got)
	}
}

func TestRecommend_TiesKeepCatalogOrder(t *testing.T) {
	store := mustStore(t, letters(8), identityWithRow(8, 0, []float64{1, 0.5, 0.7, 0.5, 0.7, 0.5, 0.1, 0.5}))
	engine := NewEngine(store, &recordingResolver{}, Config{})

	recs, err := engine.Recommend(context.Background(), "A")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got := titlesOf(recs); !equalStrings(got, []string{"C", "E", "B", "D", "F"}) {
		t.Errorf("Recommend(A) = %v, expected [C E B D F]", got)
	}
}

func TestRecommend_DuplicateTitles(t *testing.T) {
	movies := []catalog.Movie{
		{ID: 10, Title: "Heat"},
		{ID: 11, Title: "Ronin"},
		{ID: 12, Title: "Heat"},
		{ID: 13, Title: "Collateral"},
	}
	matrix := identityWithRow(4, 0, []float64{1, 0.4, 0.95, 0.6})
	matrix[2] = []float64{0.95, 0.8, 1, 0.1}
	engine := NewEngine(mustStore(t, movies, matrix), &recordingResolver{}, Config{})

	recs, err := engine.Recommend(context.Background(), "Heat")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if got := titlesOf(recs); !equalStrings(got, []string{"Collateral", "Ronin"}) {
		t.Errorf("Recommend(Heat) = %v, expected [Collateral Ronin]", got)
	}

	recs, err = engine.RecommendByID(context.Background(), 12)
	if err != nil {
		t.Fatalf("RecommendByID failed: %v", err)
	}
	if got := titlesOf(recs); !equalStrings(got, []string{"Ronin", "Collateral"}) {
		t.Errorf("RecommendByID(12) = %v, expected [Ronin Collateral]", got)
	}

	if _, err := engine.RecommendByID(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestRecommendTitles(t *testing.T) {
	store := mustStore(t, letters(6), identityWithRow(6, 0, []float64{1.0, 0.9, 0.1, 0.8, 0.5, 0.05}))
	engine := NewEngine(store, &recordingResolver{}, Config{Count: 2})

	titles, posters, err := engine.RecommendTitles(context.Background(), "A")
	if err != nil {
		t.Fatalf("RecommendTitles failed: %v", err)
	}
	if !equalStrings(titles, []string{"B", "D"}) {
		t.Errorf("titles = %v, expected [B D]", titles)
	}
	if !equalStrings(posters, []string{"https://img.test/2.jpg", "https://img.test/4.jpg"}) {
		t.Errorf("posters = %v", posters)
	}
}

type placeholderResolver struct{}

func (placeholderResolver) Resolve(ctx context.Context, movieID int) poster.Poster {
	if movieID%2 == 0 {
		return poster.Poster{URL: poster.DefaultErrorPosterURL, Outcome: poster.OutcomeTransportError, Err: errors.New("down")}
	}
	return poster.Poster{URL: poster.DefaultNoPosterURL, Outcome: poster.OutcomeNoPoster}
}

func TestRecommend_PosterFailuresDoNotAbort(t *testing.T) {
	store := mustStore(t, letters(6), identityWithRow(6, 0, []float64{1.0, 0.9, 0.1, 0.8, 0.5, 0.05}))
	engine := NewEngine(store, placeholderResolver{}, Config{})

	recs, err := engine.Recommend(context.Background(), "A")
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(recs) != 5 {
		t.Fatalf("Expected 5 recommendations, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Movie.ID%2 == 0 && (r.Poster != poster.OutcomeTransportError || r.PosterURL != poster.DefaultErrorPosterURL) {
			t.Errorf("Expected error placeholder for %q, got %+v", r.Movie.Title, r)
		}
		if r.Movie.ID%2 == 1 && (r.Poster != poster.OutcomeNoPoster || r.PosterURL != poster.DefaultNoPosterURL) {
			t.Errorf("Expected no-poster placeholder for %q, got %+v", r.Movie.Title, r)
		}
	}
}
