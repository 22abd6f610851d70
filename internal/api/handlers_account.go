package api

import (
	"github.com/gofiber/fiber/v2"
)

type profileInput struct {
	Name string `json:"name" form:"name"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
}

type deleteAccountInput struct {
	Password string `json:"password" form:"password"`
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := profileInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	name, err := handler.identity.UpdateProfileName(c.UserContext(), user.ID, input.Name)
	if err != nil {
		return handler.respondServiceError(c, err, "update profile")
	}
	return c.JSON(fiber.Map{"ok": true, "name": name, "message": handler.translate(c, "account.profile_saved")})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := changePasswordInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	if err := handler.identity.ChangePassword(c.UserContext(), user, input.CurrentPassword, input.NewPassword); err != nil {
		return handler.respondServiceError(c, err, "change password")
	}
	return c.JSON(fiber.Map{"ok": true, "message": handler.translate(c, "account.password_changed")})
}

func (handler *Handler) DeleteAccount(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	input := deleteAccountInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	if err := handler.identity.DeleteAccount(c.UserContext(), user, input.Password); err != nil {
		return handler.respondServiceError(c, err, "delete account")
	}
	handler.clearSession(c)
	handler.log.Info("account deleted", "user_id", user.ID)
	return c.JSON(fiber.Map{"ok": true, "message": handler.translate(c, "account.deleted")})
}
