package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"pdf-chat-be/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns handler errors into JSON error envelopes.
func ErrorHandlerMiddleware() fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code, message, errorType := classify(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message, errorType))
	}
}

func classify(err error) (int, string, string) {
	if appErr, ok := apperror.As(err); ok {
		message := appErr.Message
		if message == "" {
			message = string(appErr.Code)
		}
		return StatusFor(appErr), message, string(appErr.Code)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message, ""
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fiber.StatusBadRequest, strings.Join(fields, ", "), "ValidationFailed"
	}

	return fiber.StatusInternalServerError, "Internal server error", ""
}

// StatusFor maps an application error to its HTTP status.
func StatusFor(err *apperror.Error) int {
	switch err.Code {
	case apperror.CodeTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case apperror.CodeNoDocumentLoaded, apperror.CodeDocumentChanged:
		return fiber.StatusConflict
	case apperror.CodeMissingCredential:
		return fiber.StatusUnauthorized
	case apperror.CodeGenerationFailed:
		return fiber.StatusBadGateway
	}

	switch err.Kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindTransport:
		return fiber.StatusBadGateway
	case apperror.KindChunk:
		return fiber.StatusUnprocessableEntity
	case apperror.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
