package models

import "time"

const (
	PublicationDraft     = "draft"
	PublicationPublished = "published"
)

type Program struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null;default:''" json:"description"`
	Status      string    `gorm:"not null;default:draft" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Unit is one lesson of a program's curriculum. UnitIndex is 1-based and
// unique per (program, unit type).
type Unit struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProgramSlug string    `gorm:"not null;uniqueIndex:uidx_units_program_type_index" json:"program_slug"`
	UnitType    string    `gorm:"not null;default:day;uniqueIndex:uidx_units_program_type_index" json:"unit_type"`
	UnitIndex   int       `gorm:"not null;uniqueIndex:uidx_units_program_type_index" json:"unit_index"`
	Title       string    `gorm:"not null" json:"title"`
	VideoRef    string    `gorm:"not null;default:''" json:"video_ref"`
	Status      string    `gorm:"not null;default:draft" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const UnitTypeDay = "day"

func IsValidPublicationStatus(status string) bool {
	return status == PublicationDraft || status == PublicationPublished
}
