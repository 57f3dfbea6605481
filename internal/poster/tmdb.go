package poster

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const DefaultBaseURL = "https://api.themoviedb.org/3"

type TMDbClient struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// MovieDetails is the subset of /movie/{id} this service reads.
// PosterPath is nil when TMDb omits the field or sends null.
type MovieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// StatusError reports a non-2xx response from TMDb.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("TMDb API returned status %d", e.StatusCode)
}

type ClientOption func(*TMDbClient)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *TMDbClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithLanguage(language string) ClientOption {
	return func(c *TMDbClient) {
		c.language = language
	}
}

func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *TMDbClient) {
		c.httpClient.Timeout = timeout
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *TMDbClient) {
		c.httpClient = hc
	}
}

func NewTMDbClient(apiKey string, opts ...ClientOption) *TMDbClient {
	c := &TMDbClient{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		language: "en-US",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *TMDbClient) GetMovie(ctx context.Context, movieID int) (*MovieDetails, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	fullURL := fmt.Sprintf("%s/movie/%s?%s", c.baseURL, strconv.Itoa(movieID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var details MovieDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &details, nil
}
