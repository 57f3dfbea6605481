// Package poster turns TMDb movie ids into displayable poster URLs.
//
// Resolution never fails: a missing poster or an unreachable TMDb both map
// to fixed placeholder URLs, and the Outcome tells the caller which path
// was taken.
package poster

import (
	"context"
	"strings"
	"time"

	"github.com/kdimtricp/cinesuggest/internal/logging"
	"github.com/kdimtricp/cinesuggest/internal/metrics"
)

const (
	DefaultImageBaseURL   = "https://image.tmdb.org/t/p/w500"
	DefaultNoPosterURL    = "https://via.placeholder.com/500x750.png?text=No+Poster+Available"
	DefaultErrorPosterURL = "https://via.placeholder.com/500x750.png?text=API+Error"
)

type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNoPoster
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNoPoster:
		return "no_poster"
	case OutcomeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Poster is the result of one lookup. Err is set only for
// OutcomeTransportError.
type Poster struct {
	URL     string
	Outcome Outcome
	Err     error
}

type Resolver interface {
	Resolve(ctx context.Context, movieID int) Poster
}

// MovieFetcher is satisfied by *TMDbClient and *BreakerFetcher.
type MovieFetcher interface {
	GetMovie(ctx context.Context, movieID int) (*MovieDetails, error)
}

type Placeholders struct {
	NoPoster string
	Error    string
}

func DefaultPlaceholders() Placeholders {
	return Placeholders{NoPoster: DefaultNoPosterURL, Error: DefaultErrorPosterURL}
}

type TMDbResolver struct {
	fetcher      MovieFetcher
	imageBase    string
	placeholders Placeholders
}

func NewTMDbResolver(fetcher MovieFetcher, imageBaseURL string, placeholders Placeholders) *TMDbResolver {
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	if placeholders.NoPoster == "" {
		placeholders.NoPoster = DefaultNoPosterURL
	}
	if placeholders.Error == "" {
		placeholders.Error = DefaultErrorPosterURL
	}
	return &TMDbResolver{
		fetcher:      fetcher,
		imageBase:    strings.TrimRight(imageBaseURL, "/"),
		placeholders: placeholders,
	}
}

func (r *TMDbResolver) Resolve(ctx context.Context, movieID int) Poster {
	start := time.Now()
	details, err := r.fetcher.GetMovie(ctx, movieID)
	metrics.PosterLookupDuration.Observe(time.Since(start).Seconds())

	var p Poster
	switch {
	case err != nil:
		logging.Warn().Err(err).Int("movie_id", movieID).Msg("Could not fetch poster")
		p = Poster{URL: r.placeholders.Error, Outcome: OutcomeTransportError, Err: err}
	case details.PosterPath == nil || strings.TrimSpace(*details.PosterPath) == "":
		p = Poster{URL: r.placeholders.NoPoster, Outcome: OutcomeNoPoster}
	default:
		p = Poster{URL: r.ImageURL(*details.PosterPath), Outcome: OutcomeFound}
	}

	metrics.PosterLookupsTotal.WithLabelValues(p.Outcome.String()).Inc()
	return p
}

// ImageURL joins the image base and a TMDb poster path with exactly one slash.
func (r *TMDbResolver) ImageURL(posterPath string) string {
	return r.imageBase + "/" + strings.TrimLeft(posterPath, "/")
}
