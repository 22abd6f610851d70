package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/security"
)

func sessionToken(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Cookies(sessionCookieName))
}

func (handler *Handler) startSession(c *fiber.Ctx, email string) error {
	token, err := handler.sessions.Issue(email)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(security.SessionTTL / time.Second),
		Expires:  handler.now().Add(security.SessionTTL),
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	})
	return nil
}

// clearSession overwrites the cookie; issued tokens stay valid until expiry.
func (handler *Handler) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  handler.now().Add(-1 * time.Hour),
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	})
}
