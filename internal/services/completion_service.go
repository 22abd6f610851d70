package services

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/elan/internal/models"
)

type CompletionResult struct {
	State            models.DayState  `json:"state"`
	ProgramCompleted bool             `json:"program_completed"`
	Next             NavigationTarget `json:"next"`
}

type completionEnrollments interface {
	UpdateCurrentDay(ctx context.Context, enrollmentID uint, day int) error
	MarkCompleted(ctx context.Context, enrollmentID uint, at time.Time) error
}

// CompletionService marks a day done and moves the enrollment pointer.
type CompletionService struct {
	dayStates   *DayStateService
	catalog     DayCounter
	enrollments completionEnrollments
	progression *ProgressionService
	now         func() time.Time
}

func NewCompletionService(dayStates *DayStateService, catalog DayCounter, enrollments completionEnrollments, progression *ProgressionService) *CompletionService {
	return &CompletionService{
		dayStates:   dayStates,
		catalog:     catalog,
		enrollments: enrollments,
		progression: progression,
		now:         time.Now,
	}
}

// CompleteDay only advances the pointer when the completed day is the
// learner's current day; revisiting an earlier day leaves it alone.
func (service *CompletionService) CompleteDay(ctx context.Context, enrollment models.Enrollment, day int) (CompletionResult, error) {
	completed := true
	state, err := service.dayStates.Record(ctx, enrollment.UserID, enrollment.ProgramSlug, day, DayStateInput{Completed: &completed})
	if err != nil {
		return CompletionResult{}, err
	}

	total, err := service.catalog.CountPublishedDays(ctx, enrollment.ProgramSlug)
	if err != nil {
		return CompletionResult{}, err
	}

	result := CompletionResult{State: state}
	current := clampDay(enrollment.EffectiveCurrentDay(), total)
	switch {
	case enrollment.Status == models.EnrollmentCompleted:
		result.ProgramCompleted = true
	case day != current:
	case day >= total:
		if err := service.enrollments.MarkCompleted(ctx, enrollment.ID, service.now().UTC()); err != nil {
			return CompletionResult{}, fmt.Errorf("complete enrollment: %w", err)
		}
		result.ProgramCompleted = true
	default:
		if err := service.enrollments.UpdateCurrentDay(ctx, enrollment.ID, day+1); err != nil {
			return CompletionResult{}, fmt.Errorf("advance enrollment: %w", err)
		}
	}

	result.Next = service.progression.NextStep(ctx, enrollment.UserID)
	return result, nil
}
