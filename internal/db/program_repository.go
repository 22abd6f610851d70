package db

import (
	"context"

	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgramRepository struct {
	database *gorm.DB
}

func NewProgramRepository(database *gorm.DB) *ProgramRepository {
	return &ProgramRepository{database: database}
}

func (repo *ProgramRepository) ListPublished(ctx context.Context) ([]models.Program, error) {
	programs := make([]models.Program, 0)
	if err := repo.database.WithContext(ctx).
		Where("status = ?", models.PublicationPublished).
		Order("title ASC, id ASC").
		Find(&programs).Error; err != nil {
		return nil, err
	}
	return programs, nil
}

func (repo *ProgramRepository) FindBySlug(ctx context.Context, slug string) (models.Program, bool, error) {
	var program models.Program
	result := repo.database.WithContext(ctx).Where("slug = ?", slug).Limit(1).Find(&program)
	if result.Error != nil {
		return models.Program{}, false, result.Error
	}
	return program, result.RowsAffected > 0, nil
}

func (repo *ProgramRepository) Upsert(ctx context.Context, program *models.Program) error {
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "description", "status", "updated_at"}),
	}).Create(program).Error
}
