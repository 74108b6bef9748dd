package serverutils

import (
	"errors"

	"freight-broker-be/internal/entity"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeForbidden         = "FORBIDDEN"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeTrialAlreadyUsed  = "TRIAL_ALREADY_USED"
	CodeAlreadyActive     = "SUBSCRIPTION_ALREADY_ACTIVE"
	CodeNotFound          = "NOT_FOUND"
	CodeNoActive          = "NO_ACTIVE_SUBSCRIPTION"
	CodeConcurrentUpdate  = "CONCURRENT_UPDATE"
	CodeValidation        = "VALIDATION_ERROR"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInvalidSignature  = "INVALID_SIGNATURE"
	CodeInternal          = "INTERNAL_ERROR"
	CodeStoreBusy         = "STORE_BUSY"

	CodeWebhookNotConfigured = "WEBHOOK_NOT_CONFIGURED"
	CodeRouteNotFound        = "ROUTE_NOT_FOUND"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeRequestTooLarge      = "REQUEST_TOO_LARGE"
)

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{entity.ErrForbidden, fiber.StatusForbidden, CodeForbidden},
	{entity.ErrInvalidTransition, fiber.StatusUnprocessableEntity, CodeInvalidTransition},
	{entity.ErrAlreadyUsed, fiber.StatusConflict, CodeTrialAlreadyUsed},
	{entity.ErrAlreadyActive, fiber.StatusConflict, CodeAlreadyActive},
	{entity.ErrNotFound, fiber.StatusNotFound, CodeNotFound},
	{entity.ErrNoActiveSubscription, fiber.StatusConflict, CodeNoActive},
	{entity.ErrStoreBusy, fiber.StatusServiceUnavailable, CodeStoreBusy},
	{entity.ErrStaleWrite, fiber.StatusConflict, CodeConcurrentUpdate},
}

// MapError resolves the HTTP status and stable code of err. Unknown errors
// are internal.
func MapError(err error) (int, string) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return fiber.StatusBadRequest, CodeValidation
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return fiberErr.Code, CodeRouteNotFound
		case fiber.StatusMethodNotAllowed:
			return fiberErr.Code, CodeMethodNotAllowed
		case fiber.StatusRequestEntityTooLarge:
			return fiberErr.Code, CodeRequestTooLarge
		case fiber.StatusUnauthorized:
			return fiberErr.Code, CodeUnauthorized
		}
		if fiberErr.Code < fiber.StatusInternalServerError {
			return fiberErr.Code, CodeBadRequest
		}
	}

	return fiber.StatusInternalServerError, CodeInternal
}

// RespondError writes err in the standard envelope. Server-side errors never
// leak their message.
func RespondError(ctx *fiber.Ctx, err error) error {
	status, code := MapError(err)
	return respond(ctx, err, status, code)
}

// RespondRetryable writes err as a server-side failure whatever its kind, for
// callers that redeliver on 5xx and give up on 4xx.
func RespondRetryable(ctx *fiber.Ctx, err error) error {
	status, code := MapError(err)
	if status < fiber.StatusInternalServerError {
		status, code = fiber.StatusInternalServerError, CodeInternal
	}
	return respond(ctx, err, status, code)
}

func respond(ctx *fiber.Ctx, err error, status int, code string) error {
	message := err.Error()
	switch status {
	case fiber.StatusInternalServerError:
		message = "internal server error"
	case fiber.StatusServiceUnavailable:
		message = "temporarily unavailable, retry later"
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		resp := ErrorResponse(code, message)
		resp.Data = validationErr.Fields
		return ctx.Status(status).JSON(resp)
	}

	return ctx.Status(status).JSON(ErrorResponse(code, message))
}
