package services

import (
	"context"
	"fmt"

	"github.com/terraincognita07/elan/internal/models"
)

const (
	StepNone    = "none"
	StepIntro   = "intro"
	StepDay     = "day"
	StepSummary = "summary"

	ProgramsHref = "/programs"
	SummaryHref  = "/member/bilan"
)

type NavigationTarget struct {
	Type        string `json:"type"`
	Href        string `json:"href"`
	ProgramSlug string `json:"program_slug,omitempty"`
	Day         int    `json:"day,omitempty"`
}

type ProgressionDayStates interface {
	Exists(ctx context.Context, userID uint, programSlug string, day int) (bool, error)
	CountCompleted(ctx context.Context, userID uint, programSlug string) (int64, error)
}

type DayCounter interface {
	CountPublishedDays(ctx context.Context, programSlug string) (int, error)
}

type ProgramProgress struct {
	ProgramSlug   string `json:"program_slug"`
	Status        string `json:"status"`
	CurrentDay    int    `json:"current_day"`
	DaysCompleted int    `json:"days_completed"`
	TotalDays     int    `json:"total_days"`
}

type LearnerSummary struct {
	Programs      []ProgramProgress `json:"programs"`
	DaysCompleted int               `json:"days_completed"`
	TotalDays     int               `json:"total_days"`
}

// ProgressionService decides where a learner resumes.
type ProgressionService struct {
	enrollments *EnrollmentService
	catalog     DayCounter
	dayStates   ProgressionDayStates
	onFailure   func(stage string, err error)
}

func NewProgressionService(enrollments *EnrollmentService, catalog DayCounter, dayStates ProgressionDayStates) *ProgressionService {
	return &ProgressionService{enrollments: enrollments, catalog: catalog, dayStates: dayStates}
}

// OnFailure registers a callback for storage errors NextStep resolves away.
func (service *ProgressionService) OnFailure(callback func(stage string, err error)) {
	service.onFailure = callback
}

func ProgramsTarget() NavigationTarget {
	return NavigationTarget{Type: StepNone, Href: ProgramsHref}
}

func IntroHref(programSlug string) string {
	return fmt.Sprintf("/learn/%s/intro", programSlug)
}

func DayHref(programSlug string, day int) string {
	return fmt.Sprintf("/learn/%s/day/%02d", programSlug, day)
}

// NextStep never fails: storage errors resolve to the programs list.
func (service *ProgressionService) NextStep(ctx context.Context, userID uint) NavigationTarget {
	enrollment, err := service.enrollments.FindMostRecent(ctx, userID)
	if err != nil {
		service.fail("enrollment", err)
		return ProgramsTarget()
	}
	if enrollment == nil {
		return ProgramsTarget()
	}

	programSlug := enrollment.ProgramSlug
	total, err := service.catalog.CountPublishedDays(ctx, programSlug)
	if err != nil {
		service.fail("catalog", err)
		return ProgramsTarget()
	}
	if total <= 0 {
		return ProgramsTarget()
	}

	if enrollment.Status == models.EnrollmentCompleted {
		return NavigationTarget{Type: StepSummary, Href: SummaryHref, ProgramSlug: programSlug}
	}

	current := clampDay(enrollment.EffectiveCurrentDay(), total)
	if current == 1 {
		started, err := service.dayStates.Exists(ctx, userID, programSlug, 1)
		if err != nil {
			service.fail("day_state", err)
			return ProgramsTarget()
		}
		if !started {
			return NavigationTarget{Type: StepIntro, Href: IntroHref(programSlug), ProgramSlug: programSlug}
		}
	}
	return NavigationTarget{Type: StepDay, Href: DayHref(programSlug, current), ProgramSlug: programSlug, Day: current}
}

func (service *ProgressionService) Summary(ctx context.Context, userID uint) (LearnerSummary, error) {
	enrollments, err := service.enrollments.ListForUser(ctx, userID)
	if err != nil {
		return LearnerSummary{}, fmt.Errorf("list enrollments: %w", err)
	}

	summary := LearnerSummary{Programs: make([]ProgramProgress, 0, len(enrollments))}
	for _, enrollment := range enrollments {
		total, err := service.catalog.CountPublishedDays(ctx, enrollment.ProgramSlug)
		if err != nil {
			return LearnerSummary{}, err
		}
		completed, err := service.dayStates.CountCompleted(ctx, userID, enrollment.ProgramSlug)
		if err != nil {
			return LearnerSummary{}, fmt.Errorf("count completed days: %w", err)
		}
		progress := ProgramProgress{
			ProgramSlug:   enrollment.ProgramSlug,
			Status:        enrollment.Status,
			CurrentDay:    clampDay(enrollment.EffectiveCurrentDay(), total),
			DaysCompleted: int(completed),
			TotalDays:     total,
		}
		summary.Programs = append(summary.Programs, progress)
		summary.DaysCompleted += progress.DaysCompleted
		summary.TotalDays += total
	}
	return summary, nil
}

func (service *ProgressionService) fail(stage string, err error) {
	if service.onFailure != nil {
		service.onFailure(stage, err)
	}
}

func clampDay(day int, total int) int {
	if total < 1 {
		return 1
	}
	if day < 1 {
		return 1
	}
	if day > total {
		return total
	}
	return day
}
