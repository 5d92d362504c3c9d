package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// fail answers a business failure the way every storefront endpoint does:
// HTTP 200 with success=false and the error text as message.
func fail(c *fiber.Ctx, err error) error {
	return c.JSON(fiber.Map{
		"success": false,
		"message": err.Error(),
	})
}

func failMessage(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// validationFailed reports validator errors field by field.
func validationFailed(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
