// Package model defines database models
package model

import "time"

const (
	RoleOps    = "ops"
	RoleClient = "client"
)

type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null" json:"role"`
	Verified     bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`

	Files []File `gorm:"foreignKey:UploadedBy" json:"-"`
}
