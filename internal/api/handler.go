package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"pogoda/internal/weather"
)

type Handler struct {
	service *weather.Service
}

func NewHandler(service *weather.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/cities", h.getCities)
	mux.HandleFunc("GET /v1/weather/{city}", h.getWeather)
	mux.HandleFunc("GET /v1/history", h.getHistory)
	mux.HandleFunc("GET /v1/session", h.getSession)
	mux.HandleFunc("DELETE /v1/session", h.resetSession)
	mux.HandleFunc("GET /health", h.health)
}

type weatherJSON struct {
	City     string                        `json:"city"`
	Current  *weather.CanonicalObservation `json:"current"`
	Display  displayJSON                   `json:"display"`
	Alert    weather.AlertState            `json:"alert"`
	Forecast []forecastDayJSON             `json:"forecast"`
}

type forecastDayJSON struct {
	weather.DailyForecastSlot
	Display displayJSON `json:"display"`
}

// displayJSON carries the ready-to-render Polish presentation of one record.
type displayJSON struct {
	Description string `json:"description"`
	Glyph       string `json:"glyph"`
	WindKMH     int    `json:"wind_kmh"`
}

func display(obs weather.CanonicalObservation) displayJSON {
	cond := obs.Condition()
	return displayJSON{
		Description: weather.TranslateDescription(cond.Description),
		Glyph:       weather.Glyph(cond.ID),
		WindKMH:     weather.WindKMH(obs.Wind.Speed),
	}
}

func (h *Handler) getCities(w http.ResponseWriter, r *http.Request) {
	var (
		cities []string
		err    error
	)
	if q, ok := r.URL.Query()["q"]; ok {
		cities, err = h.service.Suggest(r.Context(), q[0])
	} else {
		cities, err = h.service.Cities(r.Context())
	}
	if err != nil {
		writeSearchError(w, err)
		return
	}
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, cities)
}

func (h *Handler) getWeather(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeJSONError(w, "no session", http.StatusInternalServerError)
		return
	}

	state, err := sess.Search(r.Context(), h.service, r.PathValue("city"))
	if err != nil {
		writeSearchError(w, err)
		return
	}

	resp := weatherJSON{
		City:     state.City,
		Current:  state.Current,
		Display:  display(*state.Current),
		Alert:    state.Alert,
		Forecast: make([]forecastDayJSON, 0, len(state.Forecast)),
	}
	for _, day := range state.Forecast {
		resp.Forecast = append(resp.Forecast, forecastDayJSON{
			DailyForecastSlot: day,
			Display:           display(day.CanonicalObservation),
		})
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getHistory(w http.ResponseWriter, r *http.Request) {
	if !h.service.HasHistoryStore() {
		history := []string{}
		if sess := sessionFrom(r.Context()); sess != nil {
			if recent := sess.State().History; len(recent) > 0 {
				history = recent
			}
		}
		writeJSON(w, http.StatusOK, history)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSONError(w, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := h.service.RecentSearches(r.Context(), limit)
	if err != nil {
		slog.Error("recent searches failed", "err", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if history == nil {
		history = []string{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeJSONError(w, "no session", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stateJSON(sess.State()))
}

func (h *Handler) resetSession(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeJSONError(w, "no session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stateJSON(sess.Reset()))
}

// stateJSON replaces nil slices so clients always see arrays.
func stateJSON(s weather.State) weather.State {
	if s.Forecast == nil {
		s.Forecast = []weather.DailyForecastSlot{}
	}
	if s.History == nil {
		s.History = []string{}
	}
	return s
}

func writeSearchError(w http.ResponseWriter, err error) {
	status := weather.HTTPStatus(err)
	switch {
	case status >= 500:
		slog.Error("search failed", "err", err)
	case errors.Is(err, weather.ErrSuperseded):
		slog.Debug("search superseded")
	default:
		slog.Info("search rejected", "err", err, "status", status)
	}
	writeJSONError(w, weather.UserMessage(err), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
