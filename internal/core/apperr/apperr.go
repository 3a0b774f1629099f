// Package apperr defines the error taxonomy shared by every service and
// renders it as `{"error": message}` responses.
package apperr

import (
	"errors"
	"net/http"
	"strings"

	"microshop/internal/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing record.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized marks a missing, expired or unknown credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden marks a credential that could not be verified.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict marks a uniqueness violation.
	ErrConflict = errors.New("conflict")
)

// ValidationError lists every problem found in a request.
type ValidationError struct {
	Problems []string
}

// NewValidation builds a ValidationError, or returns nil when there are no problems.
func NewValidation(problems ...string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Mark returns an error that reads as msg and is classified as kind.
func Mark(kind error, msg string) error {
	return &markedError{kind: kind, msg: msg}
}

type markedError struct {
	kind error
	msg  string
}

func (e *markedError) Error() string { return e.msg }
func (e *markedError) Unwrap() error { return e.kind }

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error body. Store failures are logged and
// replaced by internalMsg so nothing about the store leaks to the caller.
func Respond(c *fiber.Ctx, err error, internalMsg string) error {
	status := Status(err)

	if status == http.StatusInternalServerError {
		requestID, _ := c.Locals("requestid").(string)
		logger.WithRequestID(requestID).Error(internalMsg,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(status).JSON(fiber.Map{"error": internalMsg})
	}

	body := fiber.Map{"error": message(err)}
	var ve *ValidationError
	if errors.As(err, &ve) {
		body["details"] = ve.Problems
	}
	return c.Status(status).JSON(body)
}

// message strips the "context: " prefixes added while the error travelled up
// the layers and returns the text of the classified error underneath.
func message(err error) string {
	for {
		inner := errors.Unwrap(err)
		if inner == nil || !strings.HasSuffix(err.Error(), ": "+inner.Error()) {
			return err.Error()
		}
		err = inner
	}
}
