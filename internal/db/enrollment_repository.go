package db

import (
	"context"
	"time"

	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	database *gorm.DB
}

func NewEnrollmentRepository(database *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{database: database}
}

func (repo *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return repo.database.WithContext(ctx).Create(enrollment).Error
}

func (repo *EnrollmentRepository) FindByUserAndProgram(ctx context.Context, userID uint, programSlug string) (models.Enrollment, bool, error) {
	var enrollment models.Enrollment
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND program_slug = ?", userID, programSlug).
		Limit(1).
		Find(&enrollment)
	if result.Error != nil {
		return models.Enrollment{}, false, result.Error
	}
	return enrollment, result.RowsAffected > 0, nil
}

func (repo *EnrollmentRepository) FindMostRecentByUser(ctx context.Context, userID uint) (models.Enrollment, bool, error) {
	var enrollment models.Enrollment
	result := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Limit(1).
		Find(&enrollment)
	if result.Error != nil {
		return models.Enrollment{}, false, result.Error
	}
	return enrollment, result.RowsAffected > 0, nil
}

func (repo *EnrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	enrollments := make([]models.Enrollment, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (repo *EnrollmentRepository) UpdateCurrentDay(ctx context.Context, enrollmentID uint, day int) error {
	return repo.database.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", enrollmentID).Update("current_day", day).Error
}

func (repo *EnrollmentRepository) MarkCompleted(ctx context.Context, enrollmentID uint, at time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.Enrollment{}).Where("id = ?", enrollmentID).Updates(map[string]any{
		"status":       models.EnrollmentCompleted,
		"completed_at": at,
	}).Error
}

// Touch bumps updated_at so resume ordering follows the program last worked in.
func (repo *EnrollmentRepository) Touch(ctx context.Context, userID uint, programSlug string, at time.Time) error {
	return repo.database.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND program_slug = ?", userID, programSlug).
		Update("updated_at", at).Error
}
