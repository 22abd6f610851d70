package services

import (
	"context"
	"fmt"

	"github.com/terraincognita07/elan/internal/models"
)

type CatalogProgramRepository interface {
	ListPublished(ctx context.Context) ([]models.Program, error)
	FindBySlug(ctx context.Context, slug string) (models.Program, bool, error)
}

type CatalogUnitRepository interface {
	ListPublishedDays(ctx context.Context, programSlug string) ([]models.Unit, error)
}

type CurriculumCache interface {
	GetDays(ctx context.Context, programSlug string) ([]models.Unit, bool, error)
	SetDays(ctx context.Context, programSlug string, units []models.Unit) error
	Invalidate(ctx context.Context, programSlug string) error
}

type VideoURLSigner interface {
	VideoURL(ctx context.Context, ref string) (string, error)
}

type DayView struct {
	ProgramSlug string `json:"program_slug"`
	Day         int    `json:"day"`
	TotalDays   int    `json:"total_days"`
	Title       string `json:"title"`
	VideoURL    string `json:"video_url,omitempty"`
}

// CatalogService serves the published curriculum. A cache miss or cache
// failure falls through to storage.
type CatalogService struct {
	programs CatalogProgramRepository
	units    CatalogUnitRepository
	cache    CurriculumCache
	videos   VideoURLSigner
	onCache  func(op string, err error)
}

func NewCatalogService(programs CatalogProgramRepository, units CatalogUnitRepository, cache CurriculumCache, videos VideoURLSigner) *CatalogService {
	return &CatalogService{programs: programs, units: units, cache: cache, videos: videos}
}

// OnCacheError registers a callback for swallowed cache failures.
func (service *CatalogService) OnCacheError(callback func(op string, err error)) {
	service.onCache = callback
}

func (service *CatalogService) ListPublishedPrograms(ctx context.Context) ([]models.Program, error) {
	return service.programs.ListPublished(ctx)
}

func (service *CatalogService) FindProgram(ctx context.Context, programSlugLike string) (models.Program, bool, error) {
	programSlug := NormalizeProgramSlug(programSlugLike)
	if programSlug == "" {
		return models.Program{}, false, nil
	}
	return service.programs.FindBySlug(ctx, programSlug)
}

func (service *CatalogService) PublishedDays(ctx context.Context, programSlug string) ([]models.Unit, error) {
	if service.cache != nil {
		units, hit, err := service.cache.GetDays(ctx, programSlug)
		if err != nil {
			service.reportCacheError("get", err)
		} else if hit {
			return units, nil
		}
	}

	units, err := service.units.ListPublishedDays(ctx, programSlug)
	if err != nil {
		return nil, fmt.Errorf("list published days: %w", err)
	}
	if service.cache != nil {
		if err := service.cache.SetDays(ctx, programSlug, units); err != nil {
			service.reportCacheError("set", err)
		}
	}
	return units, nil
}

func (service *CatalogService) CountPublishedDays(ctx context.Context, programSlug string) (int, error) {
	units, err := service.PublishedDays(ctx, programSlug)
	if err != nil {
		return 0, err
	}
	return len(units), nil
}

func (service *CatalogService) FindPublishedDay(ctx context.Context, programSlug string, day int) (models.Unit, bool, error) {
	units, err := service.PublishedDays(ctx, programSlug)
	if err != nil {
		return models.Unit{}, false, err
	}
	for _, unit := range units {
		if unit.UnitIndex == day {
			return unit, true, nil
		}
	}
	return models.Unit{}, false, nil
}

func (service *CatalogService) DayView(ctx context.Context, programSlug string, day int) (DayView, error) {
	units, err := service.PublishedDays(ctx, programSlug)
	if err != nil {
		return DayView{}, err
	}
	for _, unit := range units {
		if unit.UnitIndex != day {
			continue
		}
		view := DayView{ProgramSlug: programSlug, Day: day, TotalDays: len(units), Title: unit.Title}
		if service.videos != nil && unit.VideoRef != "" {
			url, err := service.videos.VideoURL(ctx, unit.VideoRef)
			if err != nil {
				return DayView{}, fmt.Errorf("sign video: %w", err)
			}
			view.VideoURL = url
		} else {
			view.VideoURL = unit.VideoRef
		}
		return view, nil
	}
	return DayView{}, ErrUnknownDay
}

func (service *CatalogService) Invalidate(ctx context.Context, programSlug string) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Invalidate(ctx, programSlug); err != nil {
		service.reportCacheError("invalidate", err)
	}
}

func (service *CatalogService) reportCacheError(op string, err error) {
	if service.onCache != nil {
		service.onCache(op, err)
	}
}
