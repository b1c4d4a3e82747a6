package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the owning account for invitations and subscriptions.
type User struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                  string    `gorm:"type:varchar(120)"`
	Email                 string    `gorm:"type:varchar(255);uniqueIndex"`
	Phone                 string    `gorm:"type:varchar(32)"`
	SubscriptionTier      *string   `gorm:"type:varchar(40)"`
	SubscriptionExpiresAt *time.Time
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// Invitation is a published wedding invitation owned by a user. Envelope
// payments reference it; the owner receives the gift notification.
type Invitation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Title     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Invitation) TableName() string { return "invitations" }
