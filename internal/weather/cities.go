package weather

import (
	"strings"

	"golang.org/x/text/cases"
)

// MaxSuggestions caps suggestion lists.
const MaxSuggestions = 10

// foldKey is the case-insensitive comparison key for city names.
// A fresh Caser is used per call: Casers are not safe for concurrent use.
func foldKey(s string) string {
	return cases.Fold().String(s)
}

// ResolveCity returns the known city equal to query ignoring case.
// Only exact matches resolve; substrings never do.
func ResolveCity(query string, known []string) (string, error) {
	key := foldKey(query)
	for _, city := range known {
		if foldKey(city) == key {
			return city, nil
		}
	}
	return "", &CityNotFoundError{Query: query}
}

// SuggestCities lists known cities containing query ignoring case, at most
// MaxSuggestions of them. A blank query suggests the head of the list.
func SuggestCities(query string, known []string) []string {
	out := make([]string, 0, MaxSuggestions)
	key := foldKey(strings.TrimSpace(query))
	for _, city := range known {
		if len(out) == MaxSuggestions {
			break
		}
		if key == "" || strings.Contains(foldKey(city), key) {
			out = append(out, city)
		}
	}
	return out
}
