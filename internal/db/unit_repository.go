package db

import (
	"context"

	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnitRepository struct {
	database *gorm.DB
}

func NewUnitRepository(database *gorm.DB) *UnitRepository {
	return &UnitRepository{database: database}
}

func (repo *UnitRepository) ListPublishedDays(ctx context.Context, programSlug string) ([]models.Unit, error) {
	units := make([]models.Unit, 0)
	if err := repo.database.WithContext(ctx).
		Where("program_slug = ? AND unit_type = ? AND status = ?", programSlug, models.UnitTypeDay, models.PublicationPublished).
		Order("unit_index ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (repo *UnitRepository) ListByProgram(ctx context.Context, programSlug string) ([]models.Unit, error) {
	units := make([]models.Unit, 0)
	if err := repo.database.WithContext(ctx).
		Where("program_slug = ?", programSlug).
		Order("unit_type ASC, unit_index ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (repo *UnitRepository) Upsert(ctx context.Context, unit *models.Unit) error {
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "program_slug"}, {Name: "unit_type"}, {Name: "unit_index"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "video_ref", "status", "updated_at"}),
	}).Create(unit).Error
}
