package handlers

import (
	"fmt"
	"log"

	"scribe/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// parseBody binds the JSON request body into dst, answering 400 on a
// malformed payload. Returns false when the request has been answered.
func parseBody(c *fiber.Ctx, dst interface{}) bool {
	if err := c.BodyParser(dst); err != nil {
		log.Printf("Error parsing request body: %v", err)
		c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
		return false
	}
	return true
}

// validateStruct runs the validator over dst and answers 400 with
// field-level messages on failure. Tags are evaluated in declared order,
// so presence failures report before format failures. Returns false when
// the request has been answered.
func validateStruct(c *fiber.Ctx, validate *validator.Validate, dst interface{}) bool {
	err := validate.Struct(dst)
	if err == nil {
		return true
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		log.Printf("Unexpected validation error: %v", err)
		c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
		return false
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
	return false
}

// storeError maps a service/store error onto the response taxonomy:
// duplicate key to 400, not found to 404, everything else to an opaque
// 500. duplicateMessage names the violated constraint for the caller.
func storeError(c *fiber.Ctx, err error, duplicateMessage string) error {
	switch {
	case services.IsDuplicateKey(err):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": duplicateMessage,
		})
	case services.IsNotFound(err):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Not found",
		})
	default:
		log.Printf("Unhandled store error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}
}
