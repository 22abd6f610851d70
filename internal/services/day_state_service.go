package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/elan/internal/models"
)

const (
	maxAnswerKeys   = 50
	maxAnswerLength = 4000
)

var (
	ErrRatingOutOfRange = errors.New("rating out of range")
	ErrUnknownDay       = errors.New("unknown day")
	ErrInvalidAnswers   = errors.New("invalid answers")
)

type DayStateRepository interface {
	Find(ctx context.Context, userID uint, programSlug string, day int) (models.DayState, bool, error)
	Upsert(ctx context.Context, state *models.DayState) error
}

type EnrollmentToucher interface {
	Touch(ctx context.Context, userID uint, programSlug string, at time.Time) error
}

type PublishedDayFinder interface {
	FindPublishedDay(ctx context.Context, programSlug string, day int) (models.Unit, bool, error)
}

// DayStateInput carries a partial update; nil fields keep their stored value.
type DayStateInput struct {
	Answers         map[string]string `json:"answers"`
	Energy          *int              `json:"energy"`
	Focus           *int              `json:"focus"`
	Peace           *int              `json:"peace"`
	SelfEsteem      *int              `json:"self_esteem"`
	Practiced       *bool             `json:"practiced"`
	MantraCompleted *bool             `json:"mantra_completed"`
	Completed       *bool             `json:"completed"`
}

type DayStateService struct {
	states      DayStateRepository
	catalog     PublishedDayFinder
	enrollments EnrollmentToucher
	now         func() time.Time
}

func NewDayStateService(states DayStateRepository, catalog PublishedDayFinder, enrollments EnrollmentToucher) *DayStateService {
	return &DayStateService{states: states, catalog: catalog, enrollments: enrollments, now: time.Now}
}

func (service *DayStateService) Get(ctx context.Context, userID uint, programSlug string, day int) (models.DayState, bool, error) {
	return service.states.Find(ctx, userID, programSlug, day)
}

func ValidateDayStateInput(input DayStateInput) error {
	for _, rating := range []*int{input.Energy, input.Focus, input.Peace, input.SelfEsteem} {
		if rating != nil && (*rating < models.RatingMin || *rating > models.RatingMax) {
			return ErrRatingOutOfRange
		}
	}
	if len(input.Answers) > maxAnswerKeys {
		return ErrInvalidAnswers
	}
	for key, value := range input.Answers {
		if strings.TrimSpace(key) == "" || len(value) > maxAnswerLength {
			return ErrInvalidAnswers
		}
	}
	return nil
}

// Record merges input into the stored state for the day and persists it.
func (service *DayStateService) Record(ctx context.Context, userID uint, programSlug string, day int, input DayStateInput) (models.DayState, error) {
	if day < 1 {
		return models.DayState{}, ErrUnknownDay
	}
	if err := ValidateDayStateInput(input); err != nil {
		return models.DayState{}, err
	}
	if _, found, err := service.catalog.FindPublishedDay(ctx, programSlug, day); err != nil {
		return models.DayState{}, err
	} else if !found {
		return models.DayState{}, ErrUnknownDay
	}

	state, found, err := service.states.Find(ctx, userID, programSlug, day)
	if err != nil {
		return models.DayState{}, fmt.Errorf("load day state: %w", err)
	}
	if !found {
		state = models.DayState{UserID: userID, ProgramSlug: programSlug, Day: day}
	}
	applyDayStateInput(&state, input)

	if err := service.states.Upsert(ctx, &state); err != nil {
		return models.DayState{}, fmt.Errorf("upsert day state: %w", err)
	}
	if err := service.enrollments.Touch(ctx, userID, programSlug, service.now().UTC()); err != nil {
		return models.DayState{}, fmt.Errorf("touch enrollment: %w", err)
	}

	stored, found, err := service.states.Find(ctx, userID, programSlug, day)
	if err != nil {
		return models.DayState{}, fmt.Errorf("reload day state: %w", err)
	}
	if !found {
		return state, nil
	}
	return stored, nil
}

func applyDayStateInput(state *models.DayState, input DayStateInput) {
	if len(input.Answers) > 0 {
		merged := make(map[string]string, len(state.Answers)+len(input.Answers))
		for key, value := range state.Answers {
			merged[key] = value
		}
		for key, value := range input.Answers {
			merged[strings.TrimSpace(key)] = value
		}
		state.Answers = merged
	}
	if input.Energy != nil {
		state.Energy = input.Energy
	}
	if input.Focus != nil {
		state.Focus = input.Focus
	}
	if input.Peace != nil {
		state.Peace = input.Peace
	}
	if input.SelfEsteem != nil {
		state.SelfEsteem = input.SelfEsteem
	}
	if input.Practiced != nil {
		state.Practiced = *input.Practiced
	}
	if input.MantraCompleted != nil {
		state.MantraCompleted = *input.MantraCompleted
	}
	if input.Completed != nil {
		state.Completed = *input.Completed
	}
}
