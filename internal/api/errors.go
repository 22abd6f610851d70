package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/services"
)

type errorMapping struct {
	target error
	status int
	key    string
}

var serviceErrorMappings = []errorMapping{
	{services.ErrInvalidEmail, fiber.StatusBadRequest, "auth.error.invalid_email"},
	{services.ErrWeakPassword, fiber.StatusBadRequest, "auth.error.weak_password"},
	{services.ErrEmailTaken, fiber.StatusConflict, "auth.error.email_exists"},
	{services.ErrInvalidCredentials, fiber.StatusUnauthorized, "auth.error.invalid_credentials"},
	{services.ErrInvalidProgram, fiber.StatusBadRequest, "enrollment.error.invalid_program"},
	{services.ErrProgramNotFound, fiber.StatusNotFound, "enrollment.error.program_not_found"},
	{services.ErrEnrollmentExists, fiber.StatusConflict, "enrollment.already_enrolled"},
	{services.ErrRatingOutOfRange, fiber.StatusUnprocessableEntity, "day.error.rating_out_of_range"},
	{services.ErrInvalidAnswers, fiber.StatusUnprocessableEntity, "day.error.invalid_answers"},
	{services.ErrUnknownDay, fiber.StatusNotFound, "day.error.unknown_day"},
	{services.ErrInvalidTitle, fiber.StatusBadRequest, "admin.error.invalid_title"},
	{services.ErrInvalidStatus, fiber.StatusBadRequest, "admin.error.invalid_status"},
	{services.ErrInvalidIndex, fiber.StatusBadRequest, "admin.error.invalid_index"},
}

// respondServiceError maps domain errors to localized responses and logs
// anything unexpected as an internal failure.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error, action string) error {
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.target) {
			return apiError(c, mapping.status, handler.translate(c, mapping.key))
		}
	}
	handler.log.Error(action+" failed", "path", c.Path(), "error", err)
	return apiError(c, fiber.StatusInternalServerError, handler.translate(c, "common.error.internal"))
}
