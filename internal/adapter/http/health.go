package http

import "github.com/gofiber/fiber/v3"

// Health reports process liveness for probes.
func Health(ctx fiber.Ctx) error {
	ctx.Status(fiber.StatusOK)
	_ = ctx.JSON(fiber.Map{"status": "UP"})
	return nil
}
