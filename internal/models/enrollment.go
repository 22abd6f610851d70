package models

import "time"

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentPaused    = "paused"
)

type Enrollment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:uidx_enrollments_user_program" json:"user_id"`
	ProgramSlug string     `gorm:"not null;uniqueIndex:uidx_enrollments_user_program" json:"program_slug"`
	Status      string     `gorm:"not null;default:active" json:"status"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CurrentDay  *int       `json:"current_day"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EffectiveCurrentDay treats a missing pointer as day 1.
func (enrollment Enrollment) EffectiveCurrentDay() int {
	if enrollment.CurrentDay == nil || *enrollment.CurrentDay < 1 {
		return 1
	}
	return *enrollment.CurrentDay
}

func (enrollment Enrollment) GrantsAccess() bool {
	return enrollment.Status == EnrollmentActive || enrollment.Status == EnrollmentCompleted
}
