package poster

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kdimtricp/cinesuggest/internal/logging"
	"github.com/kdimtricp/cinesuggest/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerFetcher stops calling TMDb for a while after repeated failures.
// Rejected calls surface as errors, which the resolver maps to the error
// placeholder like any other transport failure.
type BreakerFetcher struct {
	fetcher MovieFetcher
	cb      *gobreaker.CircuitBreaker[*MovieDetails]
	name    string
}

type BreakerConfig struct {
	Name string
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MinRequests and FailureRatio decide when a closed breaker trips.
	MinRequests  uint32
	FailureRatio float64
}

func NewBreakerFetcher(fetcher MovieFetcher, cfg BreakerConfig) *BreakerFetcher {
	if cfg.Name == "" {
		cfg.Name = "tmdb-api"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Minute
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 10
	}
	if cfg.FailureRatio == 0 {
		cfg.FailureRatio = 0.6
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*MovieDetails](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_ratio", ratio).Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
		IsSuccessful: isHealthyResponse,
	})

	return &BreakerFetcher{fetcher: fetcher, cb: cb, name: cfg.Name}
}

func (b *BreakerFetcher) GetMovie(ctx context.Context, movieID int) (*MovieDetails, error) {
	details, err := b.cb.Execute(func() (*MovieDetails, error) {
		return b.fetcher.GetMovie(ctx, movieID)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	}

	return details, err
}

func (b *BreakerFetcher) State() gobreaker.State {
	return b.cb.State()
}

// isHealthyResponse keeps per-movie client errors (an unknown id is a 404)
// from tripping the breaker. Rate limiting and 5xx still count.
func isHealthyResponse(err error) bool {
	if err == nil {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode < http.StatusInternalServerError &&
			statusErr.StatusCode != http.StatusTooManyRequests &&
			statusErr.StatusCode != http.StatusUnauthorized
	}
	return false
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
