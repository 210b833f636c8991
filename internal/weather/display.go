package weather

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

var descriptionPL = map[string]string{
	"clear sky":        "Bezchmurnie",
	"few clouds":       "Małe zachmurzenie",
	"scattered clouds": "Rozproszone chmury",
	"broken clouds":    "Zachmurzenie umiarkowane",
	"overcast clouds":  "Zachmurzenie całkowite",
	"shower rain":      "Przelotne opady deszczu",
	"rain":             "Deszcz",
	"light rain":       "Lekki deszcz",
	"moderate rain":    "Umiarkowany deszcz",
	"thunderstorm":     "Burza",
	"snow":             "Śnieg",
	"mist":             "Mgła",
	"fog":              "Mgła",
	"haze":             "Zamglenie",
	"dust":             "Zapylenie",
	"sand":             "Piasek",
	"ash":              "Popiół",
	"squall":           "Szkwał",
	"tornado":          "Tornado",
}

// TranslateDescription returns the Polish label of an English condition
// description, or the description with its first letter capitalised.
func TranslateDescription(desc string) string {
	if desc == "" {
		return ""
	}
	if pl, ok := descriptionPL[strings.ToLower(desc)]; ok {
		return pl
	}
	r, size := utf8.DecodeRuneInString(desc)
	return string(unicode.ToUpper(r)) + desc[size:]
}

// Glyph picks a display symbol from the condition id ranges.
func Glyph(id int) string {
	switch {
	case id >= 200 && id < 300:
		return "⛈"
	case id >= 300 && id < 600:
		return "🌧"
	case id >= 600 && id < 700:
		return "❄"
	case id >= 700 && id < 800:
		return "🌫"
	case id == 801:
		return "🌤"
	case id >= 802 && id <= 804:
		return "☁"
	default:
		return "☀"
	}
}

// WindKMH converts a wind speed in m/s to whole km/h.
func WindKMH(speed float64) int {
	return int(math.Round(speed * 3.6))
}
