package db

import (
	"context"

	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DayStateRepository struct {
	database *gorm.DB
}

func NewDayStateRepository(database *gorm.DB) *DayStateRepository {
	return &DayStateRepository{database: database}
}

func (repo *DayStateRepository) Find(ctx context.Context, userID uint, programSlug string, day int) (models.DayState, bool, error) {
	var state models.DayState
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND program_slug = ? AND day = ?", userID, programSlug, day).
		Limit(1).
		Find(&state)
	if result.Error != nil {
		return models.DayState{}, false, result.Error
	}
	return state, result.RowsAffected > 0, nil
}

func (repo *DayStateRepository) Exists(ctx context.Context, userID uint, programSlug string, day int) (bool, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&models.DayState{}).
		Where("user_id = ? AND program_slug = ? AND day = ?", userID, programSlug, day).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (repo *DayStateRepository) CountCompleted(ctx context.Context, userID uint, programSlug string) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).
		Model(&models.DayState{}).
		Where("user_id = ? AND program_slug = ? AND completed = ?", userID, programSlug, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Upsert writes the full row keyed by (user, program, day); concurrent writers
// resolve last-write-wins through the unique index. The primary key is
// cleared so the natural key is the only conflict target.
func (repo *DayStateRepository) Upsert(ctx context.Context, state *models.DayState) error {
	row := *state
	row.ID = 0
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "program_slug"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answers",
			"energy",
			"focus",
			"peace",
			"self_esteem",
			"practiced",
			"mantra_completed",
			"completed",
			"updated_at",
		}),
	}).Create(&row).Error
}
