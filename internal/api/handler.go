package api

import (
	"errors"
	"time"

	"github.com/terraincognita07/elan/internal/db"
	"github.com/terraincognita07/elan/internal/i18n"
	"github.com/terraincognita07/elan/internal/logger"
	"github.com/terraincognita07/elan/internal/security"
	"github.com/terraincognita07/elan/internal/services"
	"gorm.io/gorm"
)

type HandlerOptions struct {
	SecretKey    string
	CookieSecure bool
	Development  bool
	I18n         *i18n.Manager
	Logger       *logger.Logger
	CatalogCache services.CurriculumCache
	VideoSigner  services.VideoURLSigner
}

type Handler struct {
	sessions     *security.SessionStore
	i18n         *i18n.Manager
	log          *logger.Logger
	cookieSecure bool
	development  bool

	identity    *services.IdentityService
	enrollments *services.EnrollmentService
	catalog     *services.CatalogService
	progression *services.ProgressionService
	gate        *services.AccessGate
	dayStates   *services.DayStateService
	completion  *services.CompletionService
	content     *services.ContentService

	loginLimiter     *attemptLimiter
	magicLinkLimiter *attemptLimiter
	now              func() time.Time
}

func NewHandler(database *gorm.DB, options HandlerOptions) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	sessions, err := security.NewSessionStore([]byte(options.SecretKey))
	if err != nil {
		return nil, err
	}

	log := options.Logger
	if log == nil {
		log = logger.NewNop()
	}

	repositories := db.NewRepositories(database)
	identity := services.NewIdentityService(repositories.Users)
	enrollments := services.NewEnrollmentService(repositories.Enrollments)
	catalog := services.NewCatalogService(repositories.Programs, repositories.Units, options.CatalogCache, options.VideoSigner)
	catalog.OnCacheError(func(op string, err error) {
		log.Warn("catalog cache failure", "op", op, "error", err)
	})
	progression := services.NewProgressionService(enrollments, catalog, repositories.DayStates)
	progression.OnFailure(func(stage string, err error) {
		log.Error("next step resolution failed", "stage", stage, "error", err)
	})
	dayStates := services.NewDayStateService(repositories.DayStates, catalog, repositories.Enrollments)

	return &Handler{
		sessions:         sessions,
		i18n:             options.I18n,
		log:              log,
		cookieSecure:     options.CookieSecure,
		development:      options.Development,
		identity:         identity,
		enrollments:      enrollments,
		catalog:          catalog,
		progression:      progression,
		gate:             services.NewAccessGate(sessions, identity, enrollments),
		dayStates:        dayStates,
		completion:       services.NewCompletionService(dayStates, catalog, repositories.Enrollments, progression),
		content:          services.NewContentService(repositories.Programs, repositories.Units, catalog),
		loginLimiter:     newAttemptLimiter(),
		magicLinkLimiter: newAttemptLimiter(),
		now:              time.Now,
	}, nil
}
