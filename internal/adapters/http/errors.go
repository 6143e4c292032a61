package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/bikepark/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, validation_failed, etc.
	Message   string `json:"message"` // Human-readable message
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeError(c, APIError{Status: status, Code: code, Message: message})
}

func writeError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errDomain maps a use case error to its HTTP response. Reason carries the
// service status or geolocation code when there is one.
func errDomain(c *fiber.Ctx, err error) error {
	var (
		verr *domain.ValidationError
		lerr *domain.GeolocationError
		gerr *domain.GeocodeError
		derr *domain.DirectionsError
	)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return errNotFound(c, "session not found")
	case errors.Is(err, domain.ErrMarkerNotFound):
		return errNotFound(c, "marker not found")
	case errors.As(err, &verr):
		return writeError(c, APIError{Status: 422, Code: "validation_failed", Message: verr.Message, Reason: verr.Field})
	case errors.As(err, &lerr):
		return writeError(c, APIError{Status: 422, Code: "geolocation_failed", Message: lerr.Message, Reason: lerr.Code})
	case errors.As(err, &gerr):
		return writeError(c, APIError{
			Status:  502,
			Code:    "geocode_failed",
			Message: "Geocode was not successful for the following reason: " + gerr.Status,
			Reason:  gerr.Status,
		})
	case errors.As(err, &derr):
		return writeError(c, APIError{
			Status:  502,
			Code:    "directions_failed",
			Message: "Directions request failed due to " + derr.Status,
			Reason:  derr.Status,
		})
	default:
		return errInternal(c, err.Error())
	}
}
