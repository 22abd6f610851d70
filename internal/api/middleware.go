package api

import (
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/models"
)

const (
	sessionCookieName  = "elan_session"
	languageCookieName = "elan_lang"
	contextUserKey     = "current_user"
	contextLanguageKey = "current_language"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func currentLanguage(c *fiber.Ctx) string {
	language, _ := c.Locals(contextLanguageKey).(string)
	return language
}

// AuthRequired resolves the session cookie to a live user. Pages redirect
// to the login form carrying the original path; API calls get a 401.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil || user == nil {
		if isAPIPath(c.Path()) {
			return apiError(c, fiber.StatusUnauthorized, handler.translate(c, "auth.error.unauthorized"))
		}
		return c.Redirect(loginRedirectPath(c.OriginalURL()), fiber.StatusSeeOther)
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, handler.translate(c, "auth.error.unauthorized"))
	}
	if !user.IsAdmin() {
		if isAPIPath(c.Path()) {
			return apiError(c, fiber.StatusForbidden, handler.translate(c, "admin.error.forbidden"))
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (*models.User, error) {
	email, err := handler.sessions.Validate(sessionToken(c))
	if err != nil {
		return nil, err
	}
	return handler.identity.Resolve(c.UserContext(), email)
}

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	cookieLanguage := c.Cookies(languageCookieName)
	language := handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	if cookieLanguage != "" {
		language = handler.i18n.NormalizeLanguage(cookieLanguage)
	}

	if cookieLanguage != language {
		handler.setLanguageCookie(c, language)
	}

	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func (handler *Handler) setLanguageCookie(c *fiber.Ctx, language string) {
	c.Cookie(&fiber.Cookie{
		Name:     languageCookieName,
		Value:    handler.i18n.NormalizeLanguage(language),
		Path:     "/",
		HTTPOnly: false,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  time.Now().AddDate(1, 0, 0),
	})
}

func (handler *Handler) translate(c *fiber.Ctx, key string) string {
	language := currentLanguage(c)
	if language == "" {
		language = handler.i18n.DetectFromAcceptLanguage(c.Get("Accept-Language"))
	}
	return handler.i18n.Translate(language, key)
}

func loginRedirectPath(next string) string {
	next = sanitizeRedirectPath(next, "")
	if next == "" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
