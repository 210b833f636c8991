package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrEmptyQuery is returned when a search is started with a blank city name.
var ErrEmptyQuery = errors.New("empty city query")

// ErrSuperseded is returned to a search whose result was discarded because a
// newer search of the same session started in the meantime.
var ErrSuperseded = errors.New("search superseded by a newer one")

// ValidationError reports a malformed numeric or date field in a backend payload.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// CityNotFoundError means the query matched no known city exactly.
type CityNotFoundError struct {
	Query string
}

func (e *CityNotFoundError) Error() string {
	return fmt.Sprintf("city %q not found", e.Query)
}

// NetworkError means no response was received from the backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx backend response. Message is the text of the
// {error} or {message} body field, empty when the body had neither.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
}

// UnknownError wraps anything that does not fit the other kinds.
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string { return e.Err.Error() }

func (e *UnknownError) Unwrap() error { return e.Err }

const (
	msgGeneric    = "Failed to fetch weather data. Please try again."
	msgAPIDefault = "An error occurred while fetching weather data"
	msgNetwork    = "No response received from the server. Please check your connection."
	msgMalformed  = "The weather service returned malformed data."
)

// UserMessage converts an error from the search path into the text shown to the user.
func UserMessage(err error) string {
	var (
		notFound   *CityNotFoundError
		apiErr     *APIError
		netErr     *NetworkError
		validation *ValidationError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyQuery):
		return "Please enter a city name."
	case errors.As(err, &notFound):
		return fmt.Sprintf("City %q not found. Please try another city from the list.", notFound.Query)
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgAPIDefault
	case errors.As(err, &netErr):
		return msgNetwork
	case errors.As(err, &validation):
		return msgMalformed
	default:
		return msgGeneric
	}
}

// HTTPStatus maps an error from the search path to the gateway response status.
func HTTPStatus(err error) int {
	var (
		notFound   *CityNotFoundError
		apiErr     *APIError
		netErr     *NetworkError
		validation *ValidationError
	)
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.As(err, &netErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &validation):
		return http.StatusBadGateway
	case errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
