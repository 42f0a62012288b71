// FILE: internal/pkg/serverutils/error_middleware.go
package serverutils

import (
	"errors"

	"graphnode-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps service sentinels and fiber errors onto HTTP
// statuses and the standard response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		case errors.Is(err, service.ErrNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, service.ErrValidation):
			code = fiber.StatusBadRequest
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
