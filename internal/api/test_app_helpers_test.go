package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/elan/internal/cache"
	"github.com/terraincognita07/elan/internal/db"
	"github.com/terraincognita07/elan/internal/i18n"
	"github.com/terraincognita07/elan/internal/models"
	"github.com/terraincognita07/elan/internal/security"
	"gorm.io/gorm"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type testAppOptions struct {
	cookieSecure bool
	development  bool
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	return newTestAppWithOptions(t, testAppOptions{})
}

func newTestAppWithOptions(t *testing.T, options testAppOptions) (*fiber.App, *gorm.DB) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "elan-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager(i18n.LangEN, i18n.Locales())
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	handler, err := NewHandler(database, HandlerOptions{
		SecretKey:    testSecretKey,
		CookieSecure: options.cookieSecure,
		Development:  options.development,
		I18n:         i18nManager,
		CatalogCache: cache.NopCatalogCache{},
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, database
}

func createTestUser(t *testing.T, database *gorm.DB, email string, password string, role string) models.User {
	t.Helper()

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedProgram(t *testing.T, database *gorm.DB, slug string, publishedDays int) {
	t.Helper()

	program := models.Program{Slug: slug, Title: "Program " + slug, Status: models.PublicationPublished}
	if err := database.Create(&program).Error; err != nil {
		t.Fatalf("create program: %v", err)
	}
	for day := 1; day <= publishedDays; day++ {
		unit := models.Unit{
			ProgramSlug: slug,
			UnitType:    models.UnitTypeDay,
			UnitIndex:   day,
			Title:       "Day",
			Status:      models.PublicationPublished,
		}
		if err := database.Create(&unit).Error; err != nil {
			t.Fatalf("create unit: %v", err)
		}
	}
}

func enrollTestUser(t *testing.T, database *gorm.DB, userID uint, slug string, status string) models.Enrollment {
	t.Helper()

	enrollment := models.Enrollment{UserID: userID, ProgramSlug: slug, Status: status, StartedAt: time.Now().UTC()}
	if err := database.Create(&enrollment).Error; err != nil {
		t.Fatalf("create enrollment: %v", err)
	}
	return enrollment
}

func sessionCookieFor(t *testing.T, email string) string {
	t.Helper()

	store, err := security.NewSessionStore([]byte(testSecretKey))
	if err != nil {
		t.Fatalf("session store: %v", err)
	}
	token, err := store.Issue(email)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return sessionCookieName + "=" + token
}

func doRequest(t *testing.T, app *fiber.App, method string, path string, cookie string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("Accept-Language", "en")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, response, &payload)
	message, _ := payload["error"].(string)
	return message
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func assertStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, string(body))
	}
}

func newFormRequest(method string, path string, form url.Values) *http.Request {
	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	request := httptest.NewRequest(method, path, reader)
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return request
}
