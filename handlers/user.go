// handlers/user.go
package handlers

import (
	"task-verification-service/config"
	"task-verification-service/services"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func SetupUserRoutes(app *fiber.App, service *services.UserService) {
	h := NewUserHandler(service)

	app.Post("/api/track-registration", h.TrackRegistration)
	app.Get("/api/user/:userAddress", h.GetUser)
	app.Post("/api/claim-daily", h.ClaimDaily)
}

// TrackRegistration records a registration with an optional referral code.
func (h *UserHandler) TrackRegistration(c *fiber.Ctx) error {
	var input struct {
		UserAddress  string `json:"userAddress"`
		ReferralCode string `json:"referralCode"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	if _, err := h.service.TrackRegistration(c.Context(), input.UserAddress, input.ReferralCode); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetUser returns a user record with task flags and claim history.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.Context(), c.Params("userAddress"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// ClaimDaily appends today's reward claim to the user's history. The amount
// defaults from DAILY_REWARD_AMOUNT when the client omits it.
func (h *UserHandler) ClaimDaily(c *fiber.Ctx) error {
	var input struct {
		UserAddress string  `json:"userAddress"`
		Amount      float64 `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid request body",
		})
	}

	amount := input.Amount
	if amount == 0 {
		amount = config.GetFloatEnv("DAILY_REWARD_AMOUNT", 10)
	}

	claim, err := h.service.ClaimDaily(c.Context(), input.UserAddress, amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"claim":   claim,
	})
}
