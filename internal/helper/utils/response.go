package utils

import "github.com/gofiber/fiber/v2"

// Every endpoint answers with the same envelope:
// {success, message, data?, errors?}.

func Success(ctx *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return ctx.Status(status).JSON(body)
}

func Error(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

func ValidationError(ctx *fiber.Ctx, errs []string) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

func Unauthorized(ctx *fiber.Ctx, message string) error {
	return Error(ctx, fiber.StatusUnauthorized, message)
}

func NotFound(ctx *fiber.Ctx, message string) error {
	return Error(ctx, fiber.StatusNotFound, message)
}
