package model

import "time"

type File struct {
	// UUID string. Only ever handed out raw to authenticated users, download
	// links carry it sealed
	ID          string `gorm:"primaryKey" json:"file_id"`
	FileName    string `gorm:"not null" json:"file_name"`
	ContentType string `gorm:"not null" json:"content_type"`
	Size        int64  `json:"size"`
	UploadedBy  string `gorm:"index;not null" json:"-"`
	Uploader    *User  `gorm:"foreignKey:UploadedBy" json:"-"`
	// Soft delete flag. Inactive files behave exactly like missing ones
	IsActive   bool      `gorm:"not null;default:true;index" json:"is_active"`
	UploadTime time.Time `gorm:"not null" json:"upload_time"`

	// Where the bytes live in the configured storage backend, never shown to clients
	StorageKey string `gorm:"uniqueIndex;not null" json:"-"`
}
