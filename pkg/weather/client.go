package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/valpere/pogoda/pkg/metrics"
)

const (
	// DefaultBaseURL is the public OpenWeatherMap endpoint.
	DefaultBaseURL = "https://api.openweathermap.org"

	// SearchLimit caps the number of geocoding matches per search.
	SearchLimit = 5

	maxBodySize = 1 << 20
)

// Client represents a weather API client. It wraps the geocoding search and
// current conditions endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *metrics.Metrics
	userAgent  string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithRateLimit limits outgoing requests to rps with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// BreakerSettings controls when the circuit breaker opens.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(s BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(s)
	}
}

// WithUserAgent sets the User-Agent header of outgoing requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMetrics records request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a new weather API client
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: newBreaker(BreakerSettings{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker {
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	threshold := s.ConsecutiveFailures

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})
}

// SearchLocations returns up to SearchLimit places matching query, in the
// order ranked by the API. An empty result is not an error.
func (c *Client) SearchLocations(ctx context.Context, query string) ([]Location, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(SearchLimit))

	var apiResponse []struct {
		Name       string            `json:"name"`
		Country    string            `json:"country"`
		State      string            `json:"state"`
		Lat        float64           `json:"lat"`
		Lon        float64           `json:"lon"`
		LocalNames map[string]string `json:"local_names"`
	}

	if err := c.get(ctx, "search", "/geo/1.0/direct", params, &apiResponse); err != nil {
		return nil, err
	}

	locations := make([]Location, 0, len(apiResponse))
	for _, item := range apiResponse {
		locations = append(locations, Location{
			Name:       item.Name,
			Country:    item.Country,
			State:      item.State,
			Lat:        item.Lat,
			Lon:        item.Lon,
			LocalNames: item.LocalNames,
		})
	}

	return locations, nil
}

// GetCurrentWeather retrieves current conditions for coords in metric units.
func (c *Client) GetCurrentWeather(ctx context.Context, coords Coordinates) (*Snapshot, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("units", "metric")

	var apiResponse struct {
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			TempMin   float64 `json:"temp_min"`
			TempMax   float64 `json:"temp_max"`
			Pressure  float64 `json:"pressure"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Dt  int64 `json:"dt"`
		Sys struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Timezone int    `json:"timezone"`
		Name     string `json:"name"`
	}

	if err := c.get(ctx, "current", "/data/2.5/weather", params, &apiResponse); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Name:           apiResponse.Name,
		Country:        apiResponse.Sys.Country,
		Coordinates:    Coordinates{Lat: apiResponse.Coord.Lat, Lon: apiResponse.Coord.Lon},
		Timestamp:      apiResponse.Dt,
		Temperature:    apiResponse.Main.Temp,
		FeelsLike:      apiResponse.Main.FeelsLike,
		TempMin:        apiResponse.Main.TempMin,
		TempMax:        apiResponse.Main.TempMax,
		Pressure:       apiResponse.Main.Pressure,
		Humidity:       apiResponse.Main.Humidity,
		Sunrise:        apiResponse.Sys.Sunrise,
		Sunset:         apiResponse.Sys.Sunset,
		WindSpeed:      apiResponse.Wind.Speed,
		WindDeg:        apiResponse.Wind.Deg,
		TimezoneOffset: apiResponse.Timezone,
	}

	if len(apiResponse.Weather) > 0 {
		snapshot.Description = apiResponse.Weather[0].Description
		snapshot.Icon = apiResponse.Weather[0].Icon
	}

	return snapshot, nil
}

type rawResponse struct {
	statusCode int
	body       []byte
	err        error
}

// get performs one GET against the API and decodes a 200 body into out.
// Transport failures, 5xx and 429 responses count against the circuit breaker;
// other non-200 responses and canceled calls are returned without tripping it.
func (c *Client) get(ctx context.Context, api, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait canceled: %w", err)
		}
	}

	params.Set("appid", c.apiKey)
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return &rawResponse{err: fmt.Errorf("failed to create request: %w", err)}, nil
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req) // nosec G704
		if err != nil {
			err = fmt.Errorf("failed to make request: %w", err)
			// A caller giving up is not a service failure.
			if ctx.Err() != nil {
				return &rawResponse{err: err}, nil
			}
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		raw := &rawResponse{statusCode: resp.StatusCode, body: body}
		if resp.StatusCode != http.StatusOK {
			if apiErr := newAPIError(raw); apiErr.retryable() {
				return nil, apiErr
			}
		}
		return raw, nil
	})
	c.metrics.ObserveHistogram(metrics.WeatherAPIDuration, time.Since(start).Seconds(), api)

	if err != nil {
		c.metrics.IncrementCounter(metrics.WeatherRequestsTotal, api, "error")
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ErrCircuitOpen
		}
		return err
	}

	raw, ok := result.(*rawResponse)
	if !ok {
		c.metrics.IncrementCounter(metrics.WeatherRequestsTotal, api, "error")
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if raw.err != nil {
		c.metrics.IncrementCounter(metrics.WeatherRequestsTotal, api, "aborted")
		return raw.err
	}
	if raw.statusCode != http.StatusOK {
		c.metrics.IncrementCounter(metrics.WeatherRequestsTotal, api, "error")
		return newAPIError(raw)
	}

	if err := json.Unmarshal(raw.body, out); err != nil {
		c.metrics.IncrementCounter(metrics.WeatherRequestsTotal, api, "error")
		return fmt.Errorf("failed to decode response: %w", err)
	}

	c.metrics.IncrementCounter(metrics.WeatherRequestsTotal, api, "success")
	return nil
}

// newAPIError extracts OpenWeatherMap's {"cod": ..., "message": ...} body if present.
func newAPIError(raw *rawResponse) *APIError {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw.body, &body)
	return &APIError{StatusCode: raw.statusCode, Message: body.Message}
}
