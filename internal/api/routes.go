package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerAPIRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", sendNoContent)
	app.Get("/lang/:lang", handler.SetLanguage)

	app.Get("/", handler.Home)
	app.Get("/login", handler.ShowLoginPage)
	app.Get("/programs", handler.ShowPrograms)
	app.Get("/auth/magic", handler.ConsumeMagicLink)

	app.Get("/learn/continue", handler.AuthRequired, handler.ContinueLearning)
	app.Get("/learn/:slug/intro", handler.ShowProgramIntro)
	app.Get("/learn/:slug/day/:day", handler.ShowDay)
	app.Get("/member/bilan", handler.AuthRequired, handler.ShowSummary)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/magic-link", handler.RequestMagicLink)
	auth.Post("/logout", handler.Logout)

	api.Post("/programs/:slug/enroll", handler.AuthRequired, handler.Enroll)

	learn := api.Group("/learn")
	learn.Get("/next", handler.AuthRequired, handler.GetNextStep)
	learn.Post("/:slug/day/:day", handler.SaveDayState)
	learn.Post("/:slug/day/:day/complete", handler.CompleteDay)

	account := api.Group("/account", handler.AuthRequired)
	account.Post("/profile", handler.UpdateProfile)
	account.Post("/password", handler.ChangePassword)
	account.Delete("", handler.DeleteAccount)

	admin := api.Group("/admin", handler.AuthRequired, handler.AdminOnly)
	admin.Post("/programs", handler.UpsertProgram)
	admin.Get("/programs/:slug/units", handler.ListProgramUnits)
	admin.Put("/programs/:slug/units/:index", handler.UpsertUnit)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
