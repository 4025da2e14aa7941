package handlers

import (
	"errors"
	"log"

	"task-verification-service/services"

	"github.com/gofiber/fiber/v2"
)

// statusForError maps the service error taxonomy to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		// driver detail goes to the server log, the client gets the
		// taxonomy label only
		log.Printf("internal error on %s %s: %v", c.Method(), c.Path(), err)
		message = services.ErrPersistence.Error()
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONErrorHandler renders errors fiber raises before a handler runs (e.g. a
// request body over the configured limit) in the same {success, error} JSON
// shape the API uses everywhere else.
func JSONErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
