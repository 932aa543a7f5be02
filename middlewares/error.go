package middlewares

import (
	"errors"

	"autocare-backend/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler centralizes error responses. Handlers return errors; only
// this function decides status codes and what the client gets to see.
func ErrorHandler(c *fiber.Ctx, err error) error {
	// 1) Domain errors carry their own kind
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		if ae.Kind == apperrors.Internal {
			logrus.WithError(err).Error("internal error")
			return c.Status(ae.Kind.HTTPStatus()).JSON(fiber.Map{
				"error":   ae.Kind.String(),
				"message": "internal server error",
			})
		}
		return c.Status(ae.Kind.HTTPStatus()).JSON(fiber.Map{
			"error":   ae.Kind.String(),
			"message": ae.Message,
		})
	}

	// 2) Validation errors (422 + per-field info)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		out := make(map[string]string, len(ve))
		for _, fe := range ve {
			out[fe.Field()] = fe.Tag()
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "invalid_input",
			"message": "validation failed",
			"errors":  out,
		})
	}

	// 3) Fiber errors (use their status code + message)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	// 4) Unknown errors (500)
	logrus.WithError(err).Error("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal",
		"message": "internal server error",
	})
}
