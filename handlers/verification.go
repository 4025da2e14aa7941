// handlers/verification.go
package handlers

import (
	"task-verification-service/models"
	"task-verification-service/services"

	"github.com/gofiber/fiber/v2"
)

type VerificationHandler struct {
	service *services.VerificationService
}

func NewVerificationHandler(service *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

func SetupVerificationRoutes(app *fiber.App, service *services.VerificationService) {
	h := NewVerificationHandler(service)

	app.Post("/api/submit-verification", h.SubmitVerification)
	app.Get("/api/verification-status/:userAddress", h.GetVerificationStatus)

	// Admin review queue. Identity is trusted as supplied; there is no auth
	// layer in front of these routes.
	app.Get("/api/admin/pending-verifications", h.GetPendingVerifications)
	app.Post("/api/admin/update-verification", h.UpdateVerification)
}

// SubmitVerification accepts a multipart proof submission: screenshot file,
// task name, and the submitting user's address. The timestamp form field the
// web client sends is accepted but the server clock is authoritative.
func (h *VerificationHandler) SubmitVerification(c *fiber.Ctx) error {
	screenshot, err := c.FormFile("screenshot")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "screenshot file is required",
		})
	}

	task := c.FormValue("task")
	userAddress := c.FormValue("userAddress")

	verification, err := h.service.Submit(c.Context(), task, userAddress, screenshot)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"verificationId": verification.ID,
	})
}

// GetVerificationStatus returns the task → status map for a user. Always 200;
// a user with no submissions gets an empty map.
func (h *VerificationHandler) GetVerificationStatus(c *fiber.Ctx) error {
	userAddress := c.Params("userAddress")

	statuses, err := h.service.StatusByUser(c.Context(), userAddress)
	if err != nil {
		return respondError(c, err)
	}
	if statuses == nil {
		statuses = map[string]string{}
	}
	return c.JSON(statuses)
}

// GetPendingVerifications returns the review queue, oldest submission first.
func (h *VerificationHandler) GetPendingVerifications(c *fiber.Ctx) error {
	pending, err := h.service.ListPending(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	if pending == nil {
		pending = []models.Verification{}
	}
	return c.JSON(pending)
}

// UpdateVerification applies an admin decision to a submission.
func (h *VerificationHandler) UpdateVerification(c *fiber.Ctx) error {
	var input struct {
		VerificationID string `json:"verificationId"`
		Status         string `json:"status"`
		ReviewNotes    string `json:"reviewNotes"`
		ReviewedBy     string `json:"reviewedBy"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	if _, err := h.service.Review(c.Context(), input.VerificationID, input.Status, input.ReviewedBy, input.ReviewNotes); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}
