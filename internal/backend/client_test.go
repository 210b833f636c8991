package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pogoda/internal/weather"
)

func newTestBackend(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var citiesHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cities", func(w http.ResponseWriter, r *http.Request) {
		citiesHits.Add(1)
		time.Sleep(20 * time.Millisecond)
		json.NewEncoder(w).Encode([]string{"Warszawa", "Kraków", "Zielona Góra"})
	})
	mux.HandleFunc("GET /api/weather/{city}", func(w http.ResponseWriter, r *http.Request) {
		city := r.PathValue("city")
		if city == "Atlantyda" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Nie znaleziono miasta"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"city":        city,
			"temperature": 21.5,
			"humidity":    40,
			"description": "few clouds",
			"icon":        "02d",
			"wind_speed":  4.2,
		})
	})
	mux.HandleFunc("GET /api/forecast/{city}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("city") {
		case "Łódź":
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "Błąd serwera pogody"})
		case "Opole":
			w.Write([]byte(`{"forecast": [`))
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"forecast": []map[string]any{
					{"datetime": "2024-06-01 12:00:00", "temperature": 20, "humidity": 50},
					{"datetime": "2024-06-01 15:00:00", "temperature": 22, "humidity": 45},
				},
			})
		}
	})
	mux.HandleFunc("GET /api/history", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"Kraków", "Warszawa"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &citiesHits
}

func TestClientCurrentWeather(t *testing.T) {
	srv, _ := newTestBackend(t)
	c := NewClient(srv.URL+"/api/", Options{})

	raw, err := c.CurrentWeather(context.Background(), "Zielona Góra")
	if err != nil {
		t.Fatal(err)
	}
	if raw.City != "Zielona Góra" {
		t.Errorf("expected escaped city to round-trip, got %q", raw.City)
	}
	if raw.Temperature == nil || *raw.Temperature != 21.5 {
		t.Errorf("unexpected temperature: %v", raw.Temperature)
	}
	if raw.FeelsLike != nil {
		t.Errorf("expected absent feels_like, got %v", *raw.FeelsLike)
	}
	if raw.Icon != "02d" {
		t.Errorf("expected icon 02d, got %q", raw.Icon)
	}
}

func TestClientForecast(t *testing.T) {
	srv, _ := newTestBackend(t)
	c := NewClient(srv.URL+"/api", Options{})

	entries, err := c.Forecast(context.Background(), "Warszawa")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Datetime != "2024-06-01 15:00:00" {
		t.Errorf("unexpected datetime: %q", entries[1].Datetime)
	}
}

func TestClientErrors(t *testing.T) {
	srv, _ := newTestBackend(t)
	c := NewClient(srv.URL+"/api", Options{})
	ctx := context.Background()

	_, err := c.CurrentWeather(ctx, "Atlantyda")
	var apiErr *weather.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Nie znaleziono miasta" {
		t.Errorf("unexpected API error: %+v", apiErr)
	}

	_, err = c.Forecast(ctx, "Łódź")
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Błąd serwera pogody" {
		t.Errorf("expected message field to be used, got %q", apiErr.Message)
	}
	if got := weather.UserMessage(err); got != "Błąd serwera pogody" {
		t.Errorf("expected verbatim user message, got %q", got)
	}

	_, err = c.Forecast(ctx, "Opole")
	var verr *weather.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for truncated body, got %v", err)
	}
}

func TestClientNetworkError(t *testing.T) {
	srv, _ := newTestBackend(t)
	url := srv.URL
	srv.Close()

	c := NewClient(url, Options{Timeout: time.Second})
	_, err := c.Cities(context.Background())
	var netErr *weather.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if got := weather.UserMessage(err); got != "No response received from the server. Please check your connection." {
		t.Errorf("unexpected user message: %q", got)
	}
}

func TestClientCitiesSharedRequest(t *testing.T) {
	srv, hits := newTestBackend(t)
	c := NewClient(srv.URL+"/api", Options{})

	var wg sync.WaitGroup
	results := make([][]string, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cities, err := c.Cities(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = cities
		}()
	}
	wg.Wait()

	if n := hits.Load(); n >= 5 {
		t.Errorf("expected concurrent calls to share requests, got %d hits", n)
	}
	for _, r := range results {
		if !slices.Equal(r, []string{"Warszawa", "Kraków", "Zielona Góra"}) {
			t.Errorf("unexpected cities: %v", r)
		}
	}
}

func TestClientRateLimit(t *testing.T) {
	srv, _ := newTestBackend(t)
	c := NewClient(srv.URL+"/api", Options{RPS: 0.5, Burst: 1})

	if _, err := c.History(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.History(ctx)
	var netErr *weather.NetworkError
	if !errors.As(err, &netErr) || netErr.Op != "rate limit" {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestClientHistory(t *testing.T) {
	srv, _ := newTestBackend(t)
	c := NewClient(srv.URL+"/api", Options{RPS: 100, Burst: 10})

	got, err := c.History(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(got, []string{"Kraków", "Warszawa"}) {
		t.Errorf("unexpected history: %v", got)
	}
}

// newGatedBackend serves /cities only after release is called. arrived
// receives a value each time a /cities request reaches the server.
func newGatedBackend(t *testing.T) (srv *httptest.Server, arrived <-chan struct{}, release func()) {
	t.Helper()
	hits := make(chan struct{}, 10)
	gate := make(chan struct{})
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cities", func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		<-gate
		json.NewEncoder(w).Encode([]string{"Warszawa", "Kraków"})
	})
	mux.HandleFunc("GET /api/weather/{city}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"city": r.PathValue("city"), "temperature": 15, "humidity": 70, "icon": "04d",
		})
	})
	mux.HandleFunc("GET /api/forecast/{city}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"forecast": []map[string]any{{"datetime": "2024-06-01 12:00:00", "temperature": 16, "humidity": 60}},
		})
	})
	srv = httptest.NewServer(mux)
	releaseFn := func() { once.Do(func() { close(gate) }) }
	t.Cleanup(func() {
		releaseFn()
		srv.Close()
	})
	return srv, hits, releaseFn
}

func TestClientCitiesCancelledCallerDoesNotFailOthers(t *testing.T) {
	srv, arrived, release := newGatedBackend(t)
	c := NewClient(srv.URL+"/api", Options{Timeout: 5 * time.Second})

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Cities(first)
		firstErr <- err
	}()
	<-arrived

	type outcome struct {
		cities []string
		err    error
	}
	second := make(chan outcome, 1)
	go func() {
		cities, err := c.Cities(context.Background())
		second <- outcome{cities, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the cancelled caller to get context.Canceled, got %v", err)
	}

	release()
	select {
	case got := <-second:
		if got.err != nil {
			t.Fatalf("second caller failed: %v", got.err)
		}
		if !slices.Equal(got.cities, []string{"Warszawa", "Kraków"}) {
			t.Errorf("unexpected cities: %v", got.cities)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second caller did not finish")
	}
}

func TestSessionLatestSearchSharesCitiesRequest(t *testing.T) {
	srv, arrived, release := newGatedBackend(t)
	c := NewClient(srv.URL+"/api", Options{Timeout: 5 * time.Second})
	svc := weather.NewService(c, nil, weather.NewNormalizer(time.UTC))
	sess := weather.NewSession()

	firstErr := make(chan error, 1)
	go func() {
		_, err := sess.Search(context.Background(), svc, "Warszawa")
		firstErr <- err
	}()
	<-arrived

	type outcome struct {
		state weather.State
		err   error
	}
	latest := make(chan outcome, 1)
	go func() {
		st, err := sess.Search(context.Background(), svc, "warszawa")
		latest <- outcome{st, err}
	}()
	time.Sleep(20 * time.Millisecond)
	release()

	if err := <-firstErr; !errors.Is(err, weather.ErrSuperseded) {
		t.Errorf("expected ErrSuperseded for the older search, got %v", err)
	}
	select {
	case got := <-latest:
		if got.err != nil {
			t.Fatalf("latest search failed: %v (%s)", got.err, weather.UserMessage(got.err))
		}
		if got.state.City != "Warszawa" || got.state.Error != "" {
			t.Errorf("unexpected state: city=%q error=%q", got.state.City, got.state.Error)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("latest search did not finish")
	}
}
