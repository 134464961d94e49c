package biblio

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// ErrInvalidCredentials covers both unknown email and wrong password so a
// caller cannot enumerate registered addresses.
var ErrInvalidCredentials = errors.New("Invalid email/password!", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrAuthRequired is returned when a protected route is hit anonymously.
var ErrAuthRequired = errors.New("Authentication required", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("AUTH_REQUIRED")

// ErrAdminRequired is returned when an authenticated non-admin hits an
// admin-only route.
var ErrAdminRequired = errors.New("Admin privileges required", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("ADMIN_REQUIRED")

// ErrNotOwner is returned when a caller mutates a record they do not own.
var ErrNotOwner = errors.New("You do not own this resource", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("NOT_OWNER")

// ErrSessionMismatch flags a refresh token whose signed claims do not match
// the user row the token is persisted on.
var ErrSessionMismatch = errors.New("Refresh token does not match session", errors.CategoryAuthz).
	WithCode(errors.CodeForbidden).
	WithTextCode("SESSION_MISMATCH")

var ErrTokenExpired = errors.New("Token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

var ErrTokenMalformed = errors.New("Token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode("TOKEN_MALFORMED")

// ErrNoEmptyPassword rejects hashing the empty string.
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// NotFoundError builds the per-entity not found error, e.g. "No user found!".
func NotFoundError(entity string) *errors.Error {
	return errors.New(fmt.Sprintf("No %s found!", entity), errors.CategoryNotFound).
		WithCode(errors.CodeNotFound)
}

// DuplicateEmailError mirrors the legacy register failure: duplicates are a
// bad request, not a conflict, as far as clients are concerned.
func DuplicateEmailError(email string) *errors.Error {
	return errors.New(fmt.Sprintf("Duplicate email: %s", email), errors.CategoryConflict).
		WithCode(errors.CodeBadRequest).
		WithTextCode("DUPLICATE_EMAIL")
}

// DuplicateError covers the remaining uniqueness checks (book already in
// collection, post title per creator, second like on a post).
func DuplicateError(message string) *errors.Error {
	return errors.New(message, errors.CategoryConflict).
		WithCode(errors.CodeBadRequest)
}

// BadRequestError wraps payload parse and validation failures.
func BadRequestError(err error, message string) *errors.Error {
	return errors.Wrap(err, errors.CategoryValidation, message).
		WithCode(errors.CodeBadRequest)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) || hasTextCode(err, ErrTokenExpired.TextCode) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for verification failures other than expiry:
// bad signature, wrong secret, truncated or garbage input.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) || hasTextCode(err, ErrTokenMalformed.TextCode) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	return errors.As(err, &rich) && rich.TextCode == code
}

// ErrorHandler maps any error escaping a handler to the wire envelope
// {"error":{"message":..., "status":...}}. Rich errors carry their own
// status; everything else is a 500 with a safe message.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = defLogger{}
	}

	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		message := "Internal server error"

		var rich *errors.Error
		var fiberErr *fiber.Error
		var validationErrs validation.Errors

		switch {
		case errors.As(err, &rich):
			if rich.Code > 0 {
				status = rich.Code
			}
			message = rich.Message
		case errors.As(err, &validationErrs):
			status = fiber.StatusBadRequest
			message = validationErrs.Error()
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			message = fiberErr.Message
		default:
			logger.Error("unhandled error: %v", err)
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed: %v", err)
		}

		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{
				"message": message,
				"status":  status,
			},
		})
	}
}
