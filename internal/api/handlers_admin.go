package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/services"
)

func (handler *Handler) UpsertProgram(c *fiber.Ctx) error {
	input := services.ProgramInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	program, err := handler.content.UpsertProgram(c.UserContext(), input)
	if err != nil {
		return handler.respondServiceError(c, err, "upsert program")
	}
	return c.JSON(program)
}

func (handler *Handler) ListProgramUnits(c *fiber.Ctx) error {
	units, err := handler.content.ListUnits(c.UserContext(), c.Params("slug"))
	if err != nil {
		return handler.respondServiceError(c, err, "list units")
	}
	return c.JSON(fiber.Map{"units": units})
}

func (handler *Handler) UpsertUnit(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "admin.error.invalid_index"))
	}
	input := services.UnitInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	unit, err := handler.content.UpsertDay(c.UserContext(), c.Params("slug"), index, input)
	if err != nil {
		return handler.respondServiceError(c, err, "upsert unit")
	}
	return c.JSON(unit)
}
