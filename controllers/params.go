package controllers

import (
	"autocare-backend/apperrors"

	"github.com/gofiber/fiber/v2"
)

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	n, err := c.ParamsInt(name)
	if err != nil || n <= 0 {
		return 0, apperrors.E(apperrors.InvalidInput, "invalid "+name)
	}
	return uint(n), nil
}
