package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/elan/internal/models"
	"gorm.io/gorm"
)

var (
	ErrEnrollmentExists  = errors.New("enrollment already exists")
	ErrInvalidProgram    = errors.New("invalid program")
	ErrProgramNotFound   = errors.New("program not found")
	ErrEnrollmentMissing = errors.New("enrollment not found")
)

type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByUserAndProgram(ctx context.Context, userID uint, programSlug string) (models.Enrollment, bool, error)
	FindMostRecentByUser(ctx context.Context, userID uint) (models.Enrollment, bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error)
	UpdateCurrentDay(ctx context.Context, enrollmentID uint, day int) error
	MarkCompleted(ctx context.Context, enrollmentID uint, at time.Time) error
	Touch(ctx context.Context, userID uint, programSlug string, at time.Time) error
}

type EnrollmentService struct {
	enrollments EnrollmentRepository
	now         func() time.Time
}

func NewEnrollmentService(enrollments EnrollmentRepository) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, now: time.Now}
}

// FindActiveOrCompleted returns nil when the user holds no access-granting
// enrollment for the program.
func (service *EnrollmentService) FindActiveOrCompleted(ctx context.Context, userID uint, programSlugLike string) (*models.Enrollment, error) {
	programSlug := NormalizeProgramSlug(programSlugLike)
	if programSlug == "" {
		return nil, nil
	}
	enrollment, found, err := service.enrollments.FindByUserAndProgram(ctx, userID, programSlug)
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	if !found || !enrollment.GrantsAccess() {
		return nil, nil
	}
	return &enrollment, nil
}

func (service *EnrollmentService) FindMostRecent(ctx context.Context, userID uint) (*models.Enrollment, error) {
	enrollment, found, err := service.enrollments.FindMostRecentByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find recent enrollment: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &enrollment, nil
}

func (service *EnrollmentService) ListForUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	return service.enrollments.ListByUser(ctx, userID)
}

func (service *EnrollmentService) Enroll(ctx context.Context, userID uint, programSlugLike string) (models.Enrollment, error) {
	programSlug := NormalizeProgramSlug(programSlugLike)
	if programSlug == "" {
		return models.Enrollment{}, ErrInvalidProgram
	}

	enrollment := models.Enrollment{
		UserID:      userID,
		ProgramSlug: programSlug,
		Status:      models.EnrollmentActive,
		StartedAt:   service.now().UTC(),
	}
	if err := service.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Enrollment{}, ErrEnrollmentExists
		}
		// Drivers without error translation still leave the row behind.
		if _, found, findErr := service.enrollments.FindByUserAndProgram(ctx, userID, programSlug); findErr == nil && found {
			return models.Enrollment{}, ErrEnrollmentExists
		}
		return models.Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}
	return enrollment, nil
}
