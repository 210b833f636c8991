package weather

import (
	"encoding/json"
	"errors"
	"strings"
	"math"
	"testing"
	"time"
)

func f64(v float64) *float64 { return &v }

func TestConditionFromIcon(t *testing.T) {
	tests := []struct {
		icon string
		id   int
		main string
	}{
		{"01d", 800, "Clear"},
		{"02n", 801, "Clouds"},
		{"03d", 802, "Clouds"},
		{"04d", 803, "Clouds"},
		{"09d", 500, "Rain"},
		{"10n", 501, "Rain"},
		{"11d", 200, "Thunderstorm"},
		{"13d", 600, "Snow"},
		{"50n", 701, "Mist"},
		{"", 800, "Clear"},
		{"1", 800, "Clear"},
		{"99d", 800, "Clear"},
		{"xx", 800, "Clear"},
	}

	for _, tt := range tests {
		t.Run(tt.icon, func(t *testing.T) {
			id, main := ConditionFromIcon(tt.icon)
			if id != tt.id || main != tt.main {
				t.Errorf("ConditionFromIcon(%q) = %d/%s, want %d/%s", tt.icon, id, main, tt.id, tt.main)
			}
		})
	}
}

func TestNormalizeCurrent(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC)
	n := &Normalizer{Now: func() time.Time { return now }, Location: time.UTC}

	obs, err := n.Current(RawObservation{
		City:        "Warszawa",
		Temperature: f64(21.5),
		FeelsLike:   f64(20),
		Humidity:    f64(55),
		Description: "light rain",
		Icon:        "10d",
		WindSpeed:   f64(4.2),
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(obs.Weather) != 1 {
		t.Fatalf("expected one weather condition, got %d", len(obs.Weather))
	}
	w := obs.Weather[0]
	if w.ID != 501 || w.Main != "Rain" {
		t.Errorf("expected 501/Rain, got %d/%s", w.ID, w.Main)
	}
	if w.Description != "light rain" || w.Icon != "10d" {
		t.Errorf("description and icon should pass through, got %q/%q", w.Description, w.Icon)
	}
	if obs.Main.Temp != 21.5 || obs.Main.FeelsLike != 20 || obs.Main.Humidity != 55 {
		t.Errorf("unexpected main block: %+v", obs.Main)
	}
	if obs.Main.TempMin != 19.5 || obs.Main.TempMax != 23.5 {
		t.Errorf("expected min/max 19.5/23.5, got %v/%v", obs.Main.TempMin, obs.Main.TempMax)
	}
	if obs.Main.Pressure != 1013 {
		t.Errorf("expected pressure 1013, got %v", obs.Main.Pressure)
	}
	if obs.Wind.Speed != 4.2 || obs.Wind.Deg != 0 {
		t.Errorf("unexpected wind: %+v", obs.Wind)
	}
	if obs.Visibility != 10000 || obs.Clouds.All != 0 {
		t.Errorf("unexpected visibility/clouds: %d/%d", obs.Visibility, obs.Clouds.All)
	}
	if obs.Dt != now.Unix() {
		t.Errorf("expected dt %d, got %d", now.Unix(), obs.Dt)
	}
	if obs.Sys != (Sys{Country: "PL"}) {
		t.Errorf("unexpected sys: %+v", obs.Sys)
	}
	if obs.Name != "Warszawa" || obs.Cod != 200 || obs.Base != "stations" {
		t.Errorf("unexpected identity fields: name=%q cod=%d base=%q", obs.Name, obs.Cod, obs.Base)
	}
	if obs.Coord != (Coord{}) || obs.DtTxt != "" {
		t.Errorf("coord and dt_txt should be zero, got %+v %q", obs.Coord, obs.DtTxt)
	}
}

func TestNormalizeTemperatureSpread(t *testing.T) {
	for _, temp := range []float64{-40, -10.5, 0, 0.25, 17, 31, 45.75} {
		obs, err := Normalize(RawObservation{City: "Gdańsk", Temperature: f64(temp), Humidity: f64(80)})
		if err != nil {
			t.Fatal(err)
		}
		if obs.Main.TempMin != temp-2 || obs.Main.TempMax != temp+2 {
			t.Errorf("temp %v: got min %v max %v", temp, obs.Main.TempMin, obs.Main.TempMax)
		}
		if obs.Main.Pressure != 1013 {
			t.Errorf("temp %v: expected pressure 1013, got %v", temp, obs.Main.Pressure)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	obs, err := Normalize(RawObservation{City: "Łódź", Temperature: f64(12), Humidity: f64(70), Description: "mist"})
	if err != nil {
		t.Fatal(err)
	}
	if obs.Wind.Speed != 0 {
		t.Errorf("missing wind speed should be 0, got %v", obs.Wind.Speed)
	}
	if obs.Main.FeelsLike != 12 {
		t.Errorf("missing feels_like should fall back to temperature, got %v", obs.Main.FeelsLike)
	}
	w := obs.Condition()
	if w.ID != 800 || w.Main != "Clear" {
		t.Errorf("missing icon should map to 800/Clear, got %d/%s", w.ID, w.Main)
	}
	if w.Icon != "" {
		t.Errorf("current icon should stay empty, got %q", w.Icon)
	}
}

func TestNormalizeValidation(t *testing.T) {
	tests := []struct {
		name  string
		raw   RawObservation
		field string
	}{
		{"missing temperature", RawObservation{Humidity: f64(50)}, "temperature"},
		{"missing humidity", RawObservation{Temperature: f64(10)}, "humidity"},
		{"NaN temperature", RawObservation{Temperature: f64(math.NaN()), Humidity: f64(50)}, "temperature"},
		{"infinite humidity", RawObservation{Temperature: f64(10), Humidity: f64(math.Inf(1))}, "humidity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
		})
	}
}

func TestNormalizeForecastEntry(t *testing.T) {
	n := &Normalizer{Location: time.UTC}
	entries := []RawForecastEntry{
		{Datetime: "2024-06-01 09:00:00", Temperature: f64(15), Humidity: f64(60), Description: "few clouds", Icon: "02d"},
		{Datetime: "2024-06-01 12:00:00", Temperature: f64(18), Humidity: f64(55), Description: "clear sky"},
	}

	got, err := n.Forecast(entries)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}

	first := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC).Unix()
	if got[0].Dt != first {
		t.Errorf("expected dt %d, got %d", first, got[0].Dt)
	}
	second := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC).Unix() + 86400
	if got[1].Dt != second {
		t.Errorf("expected dt shifted by one day %d, got %d", second, got[1].Dt)
	}

	if got[0].Sys.Pod != "n" || got[1].Sys.Pod != "d" {
		t.Errorf("expected pods n/d, got %s/%s", got[0].Sys.Pod, got[1].Sys.Pod)
	}
	if got[1].DtTxt != "2024-06-01 12:00:00" {
		t.Errorf("dt_txt should keep the raw string, got %q", got[1].DtTxt)
	}
	if w := got[1].Condition(); w.Icon != "01d" || w.ID != 800 {
		t.Errorf("missing forecast icon should default to 01d/800, got %s/%d", w.Icon, w.ID)
	}
	if got[0].Sys.Country != "" || got[0].Name != "" {
		t.Errorf("forecast intervals carry no country or name, got %+v %q", got[0].Sys, got[0].Name)
	}
}

func TestNormalizeForecastBadDatetime(t *testing.T) {
	_, err := Aggregate([]RawForecastEntry{
		{Datetime: "2024-06-01 12:00:00", Temperature: f64(10), Humidity: f64(50)},
		{Datetime: "jutro w południe", Temperature: f64(10), Humidity: f64(50)},
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "datetime" || verr.Value != "jutro w południe" {
		t.Errorf("unexpected validation error: %+v", verr)
	}
}

func TestSysJSON(t *testing.T) {
	n := &Normalizer{Now: time.Now, Location: time.UTC}

	current, err := n.Current(RawObservation{City: "Lublin", Temperature: f64(12), Humidity: f64(80)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(current)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"sys":{"country":"PL","sunrise":0,"sunset":0}`) {
		t.Errorf("current sys should carry country and sun times, got %s", b)
	}

	entry, err := n.ForecastEntry(RawForecastEntry{Datetime: "2024-06-01 12:00:00", Temperature: f64(12), Humidity: f64(80)}, 0)
	if err != nil {
		t.Fatal(err)
	}
	b, err = json.Marshal(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"sys":{"pod":"d"}`) {
		t.Errorf("forecast sys should carry only pod, got %s", b)
	}
}
