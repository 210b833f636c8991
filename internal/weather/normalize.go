package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	defaultWeatherID    = 800
	defaultWeatherMain  = "Clear"
	defaultForecastIcon = "01d"
	defaultCountry      = "PL"
	defaultBase         = "stations"
	defaultPressure     = 1013
	defaultVisibility   = 10000
	tempSpread          = 2
	secondsPerDay       = 86400
	middayTime          = "12:00:00"
)

// forecastLayouts are tried in order when parsing a forecast datetime.
var forecastLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type condition struct {
	id   int
	main string
}

// iconConditions maps the two-character icon prefix to a condition code.
var iconConditions = map[string]condition{
	"01": {800, "Clear"},
	"02": {801, "Clouds"},
	"03": {802, "Clouds"},
	"04": {803, "Clouds"},
	"09": {500, "Rain"},
	"10": {501, "Rain"},
	"11": {200, "Thunderstorm"},
	"13": {600, "Snow"},
	"50": {701, "Mist"},
}

// ConditionFromIcon derives the condition id and category from an icon code
// such as "10d". Unknown or missing icons map to 800/Clear.
func ConditionFromIcon(icon string) (int, string) {
	if len(icon) < 2 {
		return defaultWeatherID, defaultWeatherMain
	}
	c, ok := iconConditions[icon[:2]]
	if !ok {
		return defaultWeatherID, defaultWeatherMain
	}
	return c.id, c.main
}

// Normalizer turns backend payloads into canonical records.
type Normalizer struct {
	// Now stamps current observations. Defaults to time.Now.
	Now func() time.Time
	// Location is used to interpret forecast datetimes, which carry no zone.
	Location *time.Location
}

// NewNormalizer returns a Normalizer reading forecast datetimes in loc.
// A nil loc means time.Local.
func NewNormalizer(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{Now: time.Now, Location: loc}
}

var defaultNormalizer = NewNormalizer(nil)

// Normalize converts a current-weather payload using the default Normalizer.
func Normalize(raw RawObservation) (CanonicalObservation, error) {
	return defaultNormalizer.Current(raw)
}

// Current converts a current-weather payload. Dt is the normalization time:
// the backend does not report when the observation was made.
func (n *Normalizer) Current(raw RawObservation) (CanonicalObservation, error) {
	temp, err := requireFinite("temperature", raw.Temperature)
	if err != nil {
		return CanonicalObservation{}, err
	}
	humidity, err := requireFinite("humidity", raw.Humidity)
	if err != nil {
		return CanonicalObservation{}, err
	}

	obs := synthesize(temp, humidity, raw.FeelsLike, raw.WindSpeed, raw.Description, raw.Icon)
	obs.Dt = n.now().Unix()
	obs.Sys = Sys{Country: defaultCountry}
	obs.Name = raw.City
	obs.Cod = 200
	obs.Base = defaultBase
	return obs, nil
}

// ForecastEntry converts the index-th entry of a forecast payload.
//
// Dt is the parsed datetime plus index whole days. This mirrors what the
// backend's clients have always computed and is only a real timestamp for
// the first entry; DtTxt is the reliable time of the slot.
func (n *Normalizer) ForecastEntry(raw RawForecastEntry, index int) (CanonicalObservation, error) {
	at, err := n.parseDatetime(raw.Datetime)
	if err != nil {
		return CanonicalObservation{}, err
	}
	temp, err := requireFinite("temperature", raw.Temperature)
	if err != nil {
		return CanonicalObservation{}, err
	}
	humidity, err := requireFinite("humidity", raw.Humidity)
	if err != nil {
		return CanonicalObservation{}, err
	}

	icon := raw.Icon
	if icon == "" {
		icon = defaultForecastIcon
	}

	obs := synthesize(temp, humidity, raw.FeelsLike, raw.WindSpeed, raw.Description, icon)
	obs.Dt = at.Unix() + int64(index)*secondsPerDay
	obs.DtTxt = raw.Datetime
	pod := "n"
	if _, clock, _ := strings.Cut(raw.Datetime, " "); clock == middayTime {
		pod = "d"
	}
	obs.Sys = Sys{Pod: pod}
	return obs, nil
}

// Forecast converts every entry of a forecast payload, keeping input order.
func (n *Normalizer) Forecast(entries []RawForecastEntry) ([]CanonicalObservation, error) {
	out := make([]CanonicalObservation, 0, len(entries))
	for i, e := range entries {
		obs, err := n.ForecastEntry(e, i)
		if err != nil {
			return nil, fmt.Errorf("forecast entry %d: %w", i, err)
		}
		out = append(out, obs)
	}
	return out, nil
}

func synthesize(temp, humidity float64, feelsLike, windSpeed *float64, description, icon string) CanonicalObservation {
	id, main := ConditionFromIcon(icon)
	feels := temp
	if feelsLike != nil {
		feels = *feelsLike
	}
	var wind float64
	if windSpeed != nil {
		wind = *windSpeed
	}
	return CanonicalObservation{
		Weather: []WeatherCondition{{
			ID:          id,
			Main:        main,
			Description: description,
			Icon:        icon,
		}},
		Main: Main{
			Temp:      temp,
			FeelsLike: feels,
			TempMin:   temp - tempSpread,
			TempMax:   temp + tempSpread,
			Pressure:  defaultPressure,
			Humidity:  humidity,
		},
		Visibility: defaultVisibility,
		Wind:       Wind{Speed: wind},
	}
}

func (n *Normalizer) now() time.Time {
	if n.Now == nil {
		return time.Now()
	}
	return n.Now()
}

func (n *Normalizer) parseDatetime(s string) (time.Time, error) {
	loc := n.Location
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range forecastLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ValidationError{Field: "datetime", Value: s, Reason: "not a date-time"}
}

func requireFinite(field string, v *float64) (float64, error) {
	if v == nil {
		return 0, &ValidationError{Field: field, Reason: "missing"}
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, &ValidationError{Field: field, Value: fmt.Sprint(*v), Reason: "not a finite number"}
	}
	return *v, nil
}
