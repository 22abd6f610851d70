package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string `gorm:"not null;default:''"`
	Role         string `gorm:"not null;default:user"`
	PasswordHash string `gorm:"not null;default:''"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (user *User) IsAdmin() bool {
	return user != nil && user.Role == RoleAdmin
}

func (user *User) HasPassword() bool {
	return user != nil && user.PasswordHash != ""
}
