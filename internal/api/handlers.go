package api

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/kdimtricp/cinesuggest/internal/logging"
	"github.com/kdimtricp/cinesuggest/internal/metrics"
	"github.com/kdimtricp/cinesuggest/internal/models"
	"github.com/kdimtricp/cinesuggest/internal/recommend"
	"github.com/kdimtricp/cinesuggest/web"
)

const appTitle = "CineSuggest"

// HistoryStore is the subset of database.HistoryRepository the handlers use.
type HistoryStore interface {
	Record(ctx context.Context, entry *models.HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// App carries the handler dependencies. Engine is nil when the artifacts
// could not be loaded; LoadErr then holds the reason.
type App struct {
	Engine  *recommend.Engine
	LoadErr error
	History HistoryStore

	templates *template.Template
}

func NewApp(engine *recommend.Engine, loadErr error, history HistoryStore) (*App, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if engine == nil && loadErr == nil {
		loadErr = errors.New("recommendation engine not configured")
	}
	return &App{
		Engine:    engine,
		LoadErr:   loadErr,
		History:   history,
		templates: tmpl,
	}, nil
}

type pageData struct {
	Title   string
	Error   string
	Titles  []string
	Results *resultsData
}

type resultsData struct {
	Query   string
	Message string
	Items   []resultItem
}

type resultItem struct {
	Title     string
	PosterURL string
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

func (app *App) HomeHandler(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: appTitle}
	status := http.StatusOK

	if app.Engine == nil {
		data.Error = "Recommendations are unavailable: " + app.LoadErr.Error()
		status = http.StatusServiceUnavailable
	} else {
		data.Titles = app.Engine.Store().Titles()
	}

	app.render(w, status, "base", data)
}

// RecommendHandler serves the form post. htmx requests get the results
// partial only, always with 200 so htmx swaps the not-found message in;
// plain form posts get the whole page.
func (app *App) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	if app.Engine == nil {
		metrics.RecommendationsTotal.WithLabelValues("unavailable").Inc()
		http.Error(w, "Recommendations are unavailable", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	title := r.FormValue("title")

	results := &resultsData{Query: title}
	status := http.StatusOK

	recs, err := app.Engine.Recommend(r.Context(), title)
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		results.Message = fmt.Sprintf("Movie '%s' not found in the dataset.", title)
		status = http.StatusNotFound
	case err != nil:
		logging.Error().Err(err).Str("title", title).Msg("Recommendation failed")
		http.Error(w, "Recommendation failed", http.StatusInternalServerError)
		return
	default:
		for _, rec := range recs {
			results.Items = append(results.Items, resultItem{Title: rec.Movie.Title, PosterURL: rec.PosterURL})
		}
		app.recordHistory(r.Context(), title, recs)
	}

	if r.Header.Get("HX-Request") == "true" {
		app.render(w, http.StatusOK, "results", results)
		return
	}

	app.render(w, status, "base", pageData{
		Title:   appTitle,
		Titles:  app.Engine.Store().Titles(),
		Results: results,
	})
}

type movieJSON struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type recommendationJSON struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Score        float64 `json:"score"`
	PosterURL    string  `json:"poster_url"`
	PosterStatus string  `json:"poster_status"`
}

type recommendationsResponse struct {
	Query           movieJSON            `json:"query"`
	Recommendations []recommendationJSON `json:"recommendations"`
}

func (app *App) MoviesHandler(w http.ResponseWriter, r *http.Request) {
	if app.Engine == nil {
		writeError(w, http.StatusServiceUnavailable, "artifacts unavailable")
		return
	}

	movies := app.Engine.Store().Movies()
	out := make([]movieJSON, len(movies))
	for i, m := range movies {
		out[i] = movieJSON{ID: m.ID, Title: m.Title}
	}
	writeJSON(w, http.StatusOK, out)
}

// RecommendationsHandler accepts either ?id= (TMDb id) or ?title=. id wins
// when both are present.
func (app *App) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	if app.Engine == nil {
		metrics.RecommendationsTotal.WithLabelValues("unavailable").Inc()
		writeError(w, http.StatusServiceUnavailable, "artifacts unavailable")
		return
	}

	store := app.Engine.Store()
	q := r.URL.Query()

	var (
		recs []recommend.Recommendation
		idx  int
		err  error
	)
	switch {
	case q.Get("id") != "":
		id, convErr := strconv.Atoi(q.Get("id"))
		if convErr != nil {
			writeError(w, http.StatusBadRequest, "id must be an integer")
			return
		}
		idx = store.IndexOfID(id)
		recs, err = app.Engine.RecommendByID(r.Context(), id)
	case q.Get("title") != "":
		idx = store.IndexOf(q.Get("title"))
		recs, err = app.Engine.Recommend(r.Context(), q.Get("title"))
	default:
		writeError(w, http.StatusBadRequest, "title or id is required")
		return
	}

	if errors.Is(err, recommend.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("Recommendation failed")
		writeError(w, http.StatusInternalServerError, "recommendation failed")
		return
	}

	query := store.Movie(idx)
	app.recordHistoryFor(r.Context(), query.ID, query.Title, recs)

	resp := recommendationsResponse{
		Query:           movieJSON{ID: query.ID, Title: query.Title},
		Recommendations: make([]recommendationJSON, len(recs)),
	}
	for i, rec := range recs {
		resp.Recommendations[i] = recommendationJSON{
			ID:           rec.Movie.ID,
			Title:        rec.Movie.Title,
			Score:        rec.Score,
			PosterURL:    rec.PosterURL,
			PosterStatus: rec.Poster.String(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (app *App) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if app.History == nil {
		writeError(w, http.StatusNotFound, "history is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := app.History.Recent(r.Context(), limit)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to list history")
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (app *App) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Status         string `json:"status"`
		CatalogSize    int    `json:"catalog_size"`
		HistoryEnabled bool   `json:"history_enabled"`
		Error          string `json:"error,omitempty"`
	}{
		Status:         "ok",
		HistoryEnabled: app.History != nil,
	}

	status := http.StatusOK
	if app.Engine == nil {
		resp.Status = "degraded"
		resp.Error = app.LoadErr.Error()
		status = http.StatusServiceUnavailable
	} else {
		resp.CatalogSize = app.Engine.Store().Len()
	}
	writeJSON(w, status, resp)
}

func (app *App) recordHistory(ctx context.Context, title string, recs []recommend.Recommendation) {
	idx := app.Engine.Store().IndexOf(title)
	if idx < 0 {
		return
	}
	app.recordHistoryFor(ctx, app.Engine.Store().Movie(idx).ID, title, recs)
}

// recordHistoryFor is best effort; a failed insert never fails the request.
func (app *App) recordHistoryFor(ctx context.Context, movieID int, title string, recs []recommend.Recommendation) {
	if app.History == nil {
		return
	}
	titles := make([]string, len(recs))
	for i, rec := range recs {
		titles[i] = rec.Movie.Title
	}
	if err := app.History.Record(ctx, models.NewHistoryEntry(movieID, title, titles)); err != nil {
		logging.Warn().Err(err).Str("title", title).Msg("Failed to record recommendation history")
	}
}

func (app *App) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := app.templates.ExecuteTemplate(w, name, data); err != nil {
		logging.Error().Err(err).Str("template", name).Msg("Error rendering template")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Error encoding JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
