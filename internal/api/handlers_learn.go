package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/models"
	"github.com/terraincognita07/elan/internal/services"
)

// requireEnrollment runs the access gate for :slug and writes the denial
// response itself. ok is false when the caller must return err.
func (handler *Handler) requireEnrollment(c *fiber.Ctx) (services.AccessDecision, bool, error) {
	decision := handler.gate.RequireEnrollment(c.UserContext(), sessionToken(c), c.Params("slug"))
	if decision.OK {
		return decision, true, nil
	}

	switch decision.Reason {
	case services.DenyAuth, services.DenyUser:
		if isAPIPath(c.Path()) {
			return decision, false, apiError(c, fiber.StatusUnauthorized, handler.translate(c, "access.denied."+decision.Reason))
		}
		return decision, false, c.Redirect(loginRedirectPath(c.OriginalURL()), fiber.StatusSeeOther)
	default:
		return decision, false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":        handler.translate(c, "access.denied.enrollment"),
			"reason":       decision.Reason,
			"program_slug": decision.ProgramSlug,
			"programs":     services.ProgramsHref,
		})
	}
}

func (handler *Handler) ShowPrograms(c *fiber.Ctx) error {
	programs, err := handler.catalog.ListPublishedPrograms(c.UserContext())
	if err != nil {
		return handler.respondServiceError(c, err, "list programs")
	}
	return c.JSON(fiber.Map{"programs": programs})
}

func (handler *Handler) ContinueLearning(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.Redirect(handler.progression.NextStep(c.UserContext(), user.ID).Href, fiber.StatusSeeOther)
}

func (handler *Handler) GetNextStep(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	return c.JSON(handler.progression.NextStep(c.UserContext(), user.ID))
}

// Enroll treats an existing enrollment as success so double submits and
// re-enrolling from the catalog stay idempotent for the learner.
func (handler *Handler) Enroll(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	ctx := c.UserContext()

	program, found, err := handler.catalog.FindProgram(ctx, c.Params("slug"))
	if err != nil {
		return handler.respondServiceError(c, err, "load program")
	}
	if !found || program.Status != models.PublicationPublished {
		return apiError(c, fiber.StatusNotFound, handler.translate(c, "enrollment.error.program_not_found"))
	}

	status := fiber.StatusCreated
	enrollment, err := handler.enrollments.Enroll(ctx, user.ID, program.Slug)
	if errors.Is(err, services.ErrEnrollmentExists) {
		status = fiber.StatusOK
	} else if err != nil {
		return handler.respondServiceError(c, err, "enroll")
	} else {
		handler.log.Info("learner enrolled", "user_id", user.ID, "program", program.Slug, "enrollment_id", enrollment.ID)
	}

	next := services.NavigationTarget{Type: services.StepIntro, Href: services.IntroHref(program.Slug), ProgramSlug: program.Slug}
	if acceptsJSON(c) {
		return c.Status(status).JSON(fiber.Map{
			"ok":               true,
			"already_enrolled": status == fiber.StatusOK,
			"next":             next,
		})
	}
	return c.Redirect(next.Href, fiber.StatusSeeOther)
}

func (handler *Handler) ShowProgramIntro(c *fiber.Ctx) error {
	decision, ok, err := handler.requireEnrollment(c)
	if !ok {
		return err
	}
	ctx := c.UserContext()

	program, _, err := handler.catalog.FindProgram(ctx, decision.ProgramSlug)
	if err != nil {
		return handler.respondServiceError(c, err, "load program")
	}
	total, err := handler.catalog.CountPublishedDays(ctx, decision.ProgramSlug)
	if err != nil {
		return handler.respondServiceError(c, err, "count days")
	}
	return c.JSON(fiber.Map{
		"page":       "intro",
		"program":    program,
		"total_days": total,
		"start_href": services.DayHref(decision.ProgramSlug, 1),
	})
}

func (handler *Handler) ShowDay(c *fiber.Ctx) error {
	decision, ok, err := handler.requireEnrollment(c)
	if !ok {
		return err
	}
	day, valid := parseDayParam(c)
	if !valid {
		return apiError(c, fiber.StatusNotFound, handler.translate(c, "day.error.unknown_day"))
	}
	ctx := c.UserContext()

	view, err := handler.catalog.DayView(ctx, decision.ProgramSlug, day)
	if err != nil {
		return handler.respondServiceError(c, err, "load day")
	}
	state, _, err := handler.dayStates.Get(ctx, decision.UserID, decision.ProgramSlug, day)
	if err != nil {
		return handler.respondServiceError(c, err, "load day state")
	}
	return c.JSON(fiber.Map{
		"page":  "day",
		"day":   view,
		"state": state,
	})
}

func (handler *Handler) SaveDayState(c *fiber.Ctx) error {
	decision, ok, err := handler.requireEnrollment(c)
	if !ok {
		return err
	}
	day, valid := parseDayParam(c)
	if !valid {
		return apiError(c, fiber.StatusNotFound, handler.translate(c, "day.error.unknown_day"))
	}

	input := services.DayStateInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, handler.translate(c, "common.error.invalid_input"))
	}

	state, err := handler.dayStates.Record(c.UserContext(), decision.UserID, decision.ProgramSlug, day, input)
	if err != nil {
		return handler.respondServiceError(c, err, "save day state")
	}
	return c.JSON(fiber.Map{"ok": true, "state": state})
}

func (handler *Handler) CompleteDay(c *fiber.Ctx) error {
	decision, ok, err := handler.requireEnrollment(c)
	if !ok {
		return err
	}
	day, valid := parseDayParam(c)
	if !valid {
		return apiError(c, fiber.StatusNotFound, handler.translate(c, "day.error.unknown_day"))
	}

	result, err := handler.completion.CompleteDay(c.UserContext(), *decision.Enrollment, day)
	if err != nil {
		return handler.respondServiceError(c, err, "complete day")
	}
	if result.ProgramCompleted {
		handler.log.Info("program completed", "user_id", decision.UserID, "program", decision.ProgramSlug)
	}
	return c.JSON(result)
}

func (handler *Handler) ShowSummary(c *fiber.Ctx) error {
	user, _ := currentUser(c)
	summary, err := handler.progression.Summary(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondServiceError(c, err, "load summary")
	}
	return c.JSON(fiber.Map{"page": "summary", "summary": summary})
}
