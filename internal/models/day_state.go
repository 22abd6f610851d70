package models

import "time"

const (
	RatingMin = 0
	RatingMax = 10
)

type DayState struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	UserID          uint              `gorm:"not null;uniqueIndex:uidx_day_states_user_program_day" json:"user_id"`
	ProgramSlug     string            `gorm:"not null;uniqueIndex:uidx_day_states_user_program_day" json:"program_slug"`
	Day             int               `gorm:"not null;uniqueIndex:uidx_day_states_user_program_day" json:"day"`
	Answers         map[string]string `gorm:"serializer:json" json:"answers"`
	Energy          *int              `json:"energy"`
	Focus           *int              `json:"focus"`
	Peace           *int              `json:"peace"`
	SelfEsteem      *int              `json:"self_esteem"`
	Practiced       bool              `gorm:"not null;default:false" json:"practiced"`
	MantraCompleted bool              `gorm:"not null;default:false" json:"mantra_completed"`
	Completed       bool              `gorm:"not null;default:false" json:"completed"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
