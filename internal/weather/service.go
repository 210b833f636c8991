package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Backend is the weather backend API.
type Backend interface {
	Cities(ctx context.Context) ([]string, error)
	CurrentWeather(ctx context.Context, city string) (RawObservation, error)
	Forecast(ctx context.Context, city string) ([]RawForecastEntry, error)
}

// HistoryStore persists searches beyond a session.
type HistoryStore interface {
	SaveSearch(ctx context.Context, city string) error
	RecentSearches(ctx context.Context, limit int) ([]string, error)
}

// ErrNoHistoryStore is returned by RecentSearches when nothing is persisted.
var ErrNoHistoryStore = errors.New("no history store configured")

type Service struct {
	backend    Backend
	history    HistoryStore
	normalizer *Normalizer
}

// NewService wires a Service. history may be nil; normalizer defaults to
// one reading forecast times in time.Local.
func NewService(backend Backend, history HistoryStore, normalizer *Normalizer) *Service {
	if normalizer == nil {
		normalizer = NewNormalizer(nil)
	}
	return &Service{
		backend:    backend,
		history:    history,
		normalizer: normalizer,
	}
}

// Search resolves query against the backend's city list, then fetches and
// normalizes current weather and the daily forecast. Calls are sequential and
// nothing is fetched for a city that does not resolve.
func (s *Service) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	known, err := s.backend.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	city, err := ResolveCity(query, known)
	if err != nil {
		return nil, err
	}

	raw, err := s.backend.CurrentWeather(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("current weather: %w", err)
	}
	current, err := s.normalizer.Current(raw)
	if err != nil {
		return nil, fmt.Errorf("current weather: %w", err)
	}
	alert := Evaluate(current)

	entries, err := s.backend.Forecast(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	forecast, err := s.normalizer.Aggregate(entries)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}

	if s.history != nil {
		if storeErr := s.history.SaveSearch(ctx, city); storeErr != nil {
			slog.Warn("failed to store search", "city", city, "err", storeErr)
		}
	}

	slog.Debug("search completed", "city", city, "alert", alert.String(), "days", len(forecast))
	return &SearchResult{
		City:     city,
		Current:  current,
		Alert:    alert,
		Forecast: forecast,
	}, nil
}

// Cities returns the backend's city list.
func (s *Service) Cities(ctx context.Context) ([]string, error) {
	cities, err := s.backend.Cities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}

// Suggest returns the cities to offer while the user types query.
func (s *Service) Suggest(ctx context.Context, query string) ([]string, error) {
	cities, err := s.Cities(ctx)
	if err != nil {
		return nil, err
	}
	return SuggestCities(query, cities), nil
}

// HasHistoryStore reports whether searches are persisted.
func (s *Service) HasHistoryStore() bool {
	return s.history != nil
}

// RecentSearches returns persisted searches, most recent first.
func (s *Service) RecentSearches(ctx context.Context, limit int) ([]string, error) {
	if s.history == nil {
		return nil, ErrNoHistoryStore
	}
	if limit <= 0 {
		limit = MaxHistory
	}
	return s.history.RecentSearches(ctx, limit)
}
