package weather

import "encoding/json"

// RawObservation is the current-weather payload of the backend API.
// Numeric fields are pointers so a missing value can be told apart from zero.
type RawObservation struct {
	City        string   `json:"city"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like"`
	Humidity    *float64 `json:"humidity"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// RawForecastEntry is one 3-hour interval of the backend forecast payload.
type RawForecastEntry struct {
	Datetime    string   `json:"datetime"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feels_like"`
	Humidity    *float64 `json:"humidity"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// RawForecast is the body of GET /forecast/{city}.
type RawForecast struct {
	Forecast []RawForecastEntry `json:"forecast"`
}

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

type WeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type Main struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  float64 `json:"pressure"`
	Humidity  float64 `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   int     `json:"deg"`
}

type Clouds struct {
	All int `json:"all"`
}

// Sys holds country and sun times for current observations, and only Pod
// ("d" or "n") for forecast slots.
type Sys struct {
	Country string `json:"country"`
	Sunrise int64  `json:"sunrise"`
	Sunset  int64  `json:"sunset"`
	Pod     string `json:"pod"`
}

// MarshalJSON writes {pod} for forecast slots and {country, sunrise, sunset}
// otherwise.
func (s Sys) MarshalJSON() ([]byte, error) {
	if s.Pod != "" {
		return json.Marshal(struct {
			Pod string `json:"pod"`
		}{s.Pod})
	}
	return json.Marshal(struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	}{s.Country, s.Sunrise, s.Sunset})
}

// CanonicalObservation is the provider-shaped record used both for current
// weather and for each forecast interval. Weather always has one element.
type CanonicalObservation struct {
	Coord      Coord              `json:"coord"`
	Weather    []WeatherCondition `json:"weather"`
	Base       string             `json:"base,omitempty"`
	Main       Main               `json:"main"`
	Visibility int                `json:"visibility"`
	Wind       Wind               `json:"wind"`
	Clouds     Clouds             `json:"clouds"`
	Dt         int64              `json:"dt"`
	DtTxt      string             `json:"dt_txt,omitempty"`
	Sys        Sys                `json:"sys"`
	Timezone   int                `json:"timezone"`
	ID         int                `json:"id"`
	Name       string             `json:"name,omitempty"`
	Cod        int                `json:"cod,omitempty"`
}

// Condition returns the single weather condition of the record.
func (o CanonicalObservation) Condition() WeatherCondition {
	if len(o.Weather) == 0 {
		return WeatherCondition{ID: defaultWeatherID, Main: defaultWeatherMain}
	}
	return o.Weather[0]
}

// DailyForecastSlot is the forecast interval chosen to represent one calendar day.
type DailyForecastSlot struct {
	Date string `json:"date"`
	CanonicalObservation
}

// SearchResult is everything one successful search produces.
type SearchResult struct {
	City     string               `json:"city"`
	Current  CanonicalObservation `json:"current"`
	Alert    AlertState           `json:"alert"`
	Forecast []DailyForecastSlot  `json:"forecast"`
}
