package api

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/models"
	"github.com/terraincognita07/elan/internal/services"
)

type credentialsInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
	Next     string `json:"next" form:"next"`
}

type magicLinkInput struct {
	Email string `json:"email" form:"email"`
	Next  string `json:"next" form:"next"`
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if user, err := handler.authenticateRequest(c); err == nil && user != nil {
		return c.Redirect(sanitizeRedirectPath(c.Query("next"), "/learn/continue"), fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"page":  "login",
		"next":  sanitizeRedirectPath(c.Query("next"), ""),
		"error": c.Query("error"),
		"csrf":  csrfToken(c),
	})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	user, err := handler.identity.Register(c.UserContext(), services.RegistrationInput{
		Email:    input.Email,
		Name:     input.Name,
		Password: input.Password,
	})
	if err != nil {
		return handler.respondServiceError(c, err, "register")
	}

	if err := handler.startSession(c, user.Email); err != nil {
		return handler.respondServiceError(c, err, "start session")
	}
	handler.log.Info("user registered", "user_id", user.ID)

	target := handler.postLoginTarget(c, &user, input.Next)
	if acceptsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "redirect": target})
	}
	return redirectOrJSON(c, target)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	input := credentialsInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	limiterKey := loginLimiterKey(c, input.Email)
	now := handler.now()
	if handler.loginLimiter.tooManyRecent(limiterKey, now, loginAttemptLimit, loginAttemptWindow) {
		return apiError(c, fiber.StatusTooManyRequests, handler.translate(c, "auth.error.too_many_attempts"))
	}

	user, err := handler.identity.Authenticate(c.UserContext(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			handler.loginLimiter.addFailure(limiterKey, now, loginAttemptWindow)
		}
		return handler.respondServiceError(c, err, "login")
	}
	handler.loginLimiter.reset(limiterKey)

	if err := handler.startSession(c, user.Email); err != nil {
		return handler.respondServiceError(c, err, "start session")
	}
	return redirectOrJSON(c, handler.postLoginTarget(c, &user, input.Next))
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.clearSession(c)
	return redirectOrJSON(c, "/login")
}

// RequestMagicLink always answers with the same message so callers cannot
// probe which addresses have accounts. Links are not mailed; development
// builds log and return them.
func (handler *Handler) RequestMagicLink(c *fiber.Ctx) error {
	input := magicLinkInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	limiterKey := requestLimiterKey(c)
	now := handler.now()
	if handler.magicLinkLimiter.tooManyRecent(limiterKey, now, magicLinkAttemptLimit, magicLinkAttemptWindow) {
		return apiError(c, fiber.StatusTooManyRequests, handler.translate(c, "auth.error.too_many_attempts"))
	}
	handler.magicLinkLimiter.addFailure(limiterKey, now, magicLinkAttemptWindow)

	response := fiber.Map{"ok": true, "message": handler.translate(c, "auth.magic_link_sent")}
	user, created, err := handler.identity.EnsureForMagicLink(c.UserContext(), input.Email)
	switch {
	case errors.Is(err, services.ErrInvalidEmail):
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "auth.error.invalid_email"))
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusAccepted).JSON(response)
	case err != nil:
		return handler.respondServiceError(c, err, "magic link")
	}

	token, err := handler.sessions.IssueMagicLink(user.Email)
	if err != nil {
		return handler.respondServiceError(c, err, "issue magic link")
	}
	link := "/auth/magic?token=" + url.QueryEscape(token)
	if next := sanitizeRedirectPath(input.Next, ""); next != "" {
		link += "&next=" + url.QueryEscape(next)
	}

	if handler.development {
		handler.log.Info("magic link issued", "user_id", user.ID, "created", created, "link", link)
		response["link"] = link
	}
	return c.Status(fiber.StatusAccepted).JSON(response)
}

func (handler *Handler) ConsumeMagicLink(c *fiber.Ctx) error {
	email, err := handler.sessions.ValidateMagicLink(strings.TrimSpace(c.Query("token")))
	if err != nil {
		return handler.rejectMagicLink(c)
	}
	user, err := handler.identity.Resolve(c.UserContext(), email)
	if err != nil || user == nil {
		return handler.rejectMagicLink(c)
	}

	if err := handler.startSession(c, user.Email); err != nil {
		return handler.respondServiceError(c, err, "start session")
	}
	return c.Redirect(handler.postLoginTarget(c, user, c.Query("next")), fiber.StatusSeeOther)
}

func (handler *Handler) rejectMagicLink(c *fiber.Ctx) error {
	if acceptsJSON(c) {
		return apiError(c, fiber.StatusUnauthorized, handler.translate(c, "auth.error.invalid_magic_link"))
	}
	return c.Redirect("/login?error=magic_link", fiber.StatusSeeOther)
}

// postLoginTarget prefers an explicit safe next path, then the learner's
// resume point.
func (handler *Handler) postLoginTarget(c *fiber.Ctx, user *models.User, next string) string {
	if target := sanitizeRedirectPath(next, ""); target != "" {
		return target
	}
	return handler.progression.NextStep(c.UserContext(), user.ID).Href
}

func csrfToken(c *fiber.Ctx) string {
	token, _ := c.Locals("csrf").(string)
	return token
}
