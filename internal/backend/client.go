package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"pogoda/internal/weather"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

type Options struct {
	Timeout time.Duration
	// RPS limits outgoing requests per second. Zero disables the limit.
	RPS   float64
	Burst int
}

// Client talks to the weather backend API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	group      singleflight.Group
}

func NewClient(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RPS > 0 {
		limit = rate.Limit(opts.RPS)
	}
	if opts.Burst < 1 {
		opts.Burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(limit, opts.Burst),
	}
}

// Cities returns the names the backend knows. Concurrent calls share one
// request. The shared request outlives a cancelled caller so the others still
// get their answer; each caller stops waiting when its own ctx is done.
func (c *Client) Cities(ctx context.Context) ([]string, error) {
	ch := c.group.DoChan("cities", func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.httpClient.Timeout)
		defer cancel()
		var cities []string
		if err := c.get(fetchCtx, "/cities", &cities); err != nil {
			return nil, err
		}
		return cities, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch cities: %w", &weather.NetworkError{Op: "GET /cities", Err: ctx.Err()})
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetch cities: %w", res.Err)
		}
		if res.Shared {
			slog.Debug("shared cities request")
		}
		// Callers may sort or filter the slice.
		return append([]string(nil), res.Val.([]string)...), nil
	}
}

func (c *Client) CurrentWeather(ctx context.Context, city string) (weather.RawObservation, error) {
	var raw weather.RawObservation
	if err := c.get(ctx, "/weather/"+url.PathEscape(city), &raw); err != nil {
		return raw, fmt.Errorf("fetch weather for %s: %w", city, err)
	}
	return raw, nil
}

func (c *Client) Forecast(ctx context.Context, city string) ([]weather.RawForecastEntry, error) {
	var raw weather.RawForecast
	if err := c.get(ctx, "/forecast/"+url.PathEscape(city), &raw); err != nil {
		return nil, fmt.Errorf("fetch forecast for %s: %w", city, err)
	}
	return raw.Forecast, nil
}

// History returns the searches the backend itself recorded, most recent first.
func (c *Client) History(ctx context.Context) ([]string, error) {
	var history []string
	if err := c.get(ctx, "/history", &history); err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	return history, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &weather.NetworkError{Op: "rate limit", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &weather.UnknownError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &weather.NetworkError{Op: "GET " + path, Err: err}
	}
	defer resp.Body.Close()

	slog.Debug("backend request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &weather.APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &weather.ValidationError{Field: "body", Value: path, Reason: err.Error()}
	}
	return nil
}

// errorMessage extracts the "error" or "message" field of a JSON error body.
func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
