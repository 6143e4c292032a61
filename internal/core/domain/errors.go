package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMarkerNotFound  = errors.New("marker not found")
)

// FetchError means the feed was unreachable or malformed.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch feed %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PositionError codes mirror the browser geolocation API, plus Unsupported.
const (
	GeolocationPermissionDenied    = "PERMISSION_DENIED"
	GeolocationPositionUnavailable = "POSITION_UNAVAILABLE"
	GeolocationTimeout             = "TIMEOUT"
	GeolocationUnsupported         = "UNSUPPORTED"
)

// GeolocationError is returned when the platform location API failed.
// Message is meant to be shown to the user as is.
type GeolocationError struct {
	Code    string
	Message string
}

func (e *GeolocationError) Error() string {
	return fmt.Sprintf("geolocation %s: %s", e.Code, e.Message)
}

// NewGeolocationError maps a PositionError code to a user-facing message.
func NewGeolocationError(code string) *GeolocationError {
	var msg string
	switch code {
	case GeolocationPermissionDenied:
		msg = "Location access was denied. Enter an address instead."
	case GeolocationTimeout:
		msg = "Finding your location took too long. Try again or enter an address."
	case GeolocationUnsupported:
		msg = "Your browser does not support geolocation. Enter an address instead."
	default:
		code = GeolocationPositionUnavailable
		msg = "Your location is unavailable right now. Enter an address instead."
	}
	return &GeolocationError{Code: code, Message: msg}
}

// GeocodeError carries the non-OK status of an address resolution.
type GeocodeError struct {
	Address string
	Status  string
	Err     error
}

func (e *GeocodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode %q: %s: %v", e.Address, e.Status, e.Err)
	}
	return fmt.Sprintf("geocode %q: %s", e.Address, e.Status)
}

func (e *GeocodeError) Unwrap() error { return e.Err }

// DirectionsError carries the non-OK status of a routing request.
type DirectionsError struct {
	Status string
	Err    error
}

func (e *DirectionsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("directions: %s: %v", e.Status, e.Err)
	}
	return "directions: " + e.Status
}

func (e *DirectionsError) Unwrap() error { return e.Err }

// ValidationError aborts an operation before any external call is made.
// Message is shown to the user as a blocking alert.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
