package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/elan/internal/models"
)

var (
	ErrInvalidTitle  = errors.New("invalid title")
	ErrInvalidStatus = errors.New("invalid publication status")
	ErrInvalidIndex  = errors.New("invalid unit index")
)

type ContentProgramRepository interface {
	FindBySlug(ctx context.Context, slug string) (models.Program, bool, error)
	Upsert(ctx context.Context, program *models.Program) error
}

type ContentUnitRepository interface {
	ListByProgram(ctx context.Context, programSlug string) ([]models.Unit, error)
	Upsert(ctx context.Context, unit *models.Unit) error
}

type CatalogInvalidator interface {
	Invalidate(ctx context.Context, programSlug string)
}

type ProgramInput struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type UnitInput struct {
	Title    string `json:"title"`
	VideoRef string `json:"video_ref"`
	Status   string `json:"status"`
}

// ContentService is the admin authoring side of the catalog.
type ContentService struct {
	programs ContentProgramRepository
	units    ContentUnitRepository
	catalog  CatalogInvalidator
}

func NewContentService(programs ContentProgramRepository, units ContentUnitRepository, catalog CatalogInvalidator) *ContentService {
	return &ContentService{programs: programs, units: units, catalog: catalog}
}

func (service *ContentService) UpsertProgram(ctx context.Context, input ProgramInput) (models.Program, error) {
	programSlug := NormalizeProgramSlug(input.Slug)
	if programSlug == "" {
		return models.Program{}, ErrInvalidProgram
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Program{}, ErrInvalidTitle
	}
	status := normalizeStatus(input.Status)
	if !models.IsValidPublicationStatus(status) {
		return models.Program{}, ErrInvalidStatus
	}

	program := models.Program{
		Slug:        programSlug,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
	}
	if err := service.programs.Upsert(ctx, &program); err != nil {
		return models.Program{}, fmt.Errorf("upsert program: %w", err)
	}
	stored, found, err := service.programs.FindBySlug(ctx, programSlug)
	if err != nil || !found {
		return program, nil
	}
	return stored, nil
}

func (service *ContentService) UpsertDay(ctx context.Context, programSlugLike string, index int, input UnitInput) (models.Unit, error) {
	programSlug, err := service.existingProgram(ctx, programSlugLike)
	if err != nil {
		return models.Unit{}, err
	}
	if index < 1 {
		return models.Unit{}, ErrInvalidIndex
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Unit{}, ErrInvalidTitle
	}
	status := normalizeStatus(input.Status)
	if !models.IsValidPublicationStatus(status) {
		return models.Unit{}, ErrInvalidStatus
	}

	unit := models.Unit{
		ProgramSlug: programSlug,
		UnitType:    models.UnitTypeDay,
		UnitIndex:   index,
		Title:       title,
		VideoRef:    strings.TrimSpace(input.VideoRef),
		Status:      status,
	}
	if err := service.units.Upsert(ctx, &unit); err != nil {
		return models.Unit{}, fmt.Errorf("upsert unit: %w", err)
	}
	service.catalog.Invalidate(ctx, programSlug)
	return unit, nil
}

func (service *ContentService) ListUnits(ctx context.Context, programSlugLike string) ([]models.Unit, error) {
	programSlug, err := service.existingProgram(ctx, programSlugLike)
	if err != nil {
		return nil, err
	}
	return service.units.ListByProgram(ctx, programSlug)
}

func (service *ContentService) existingProgram(ctx context.Context, programSlugLike string) (string, error) {
	programSlug := NormalizeProgramSlug(programSlugLike)
	if programSlug == "" {
		return "", ErrInvalidProgram
	}
	_, found, err := service.programs.FindBySlug(ctx, programSlug)
	if err != nil {
		return "", fmt.Errorf("load program: %w", err)
	}
	if !found {
		return "", ErrProgramNotFound
	}
	return programSlug, nil
}

func normalizeStatus(raw string) string {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" {
		return models.PublicationDraft
	}
	return status
}
