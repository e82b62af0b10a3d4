package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RevokedToken records a session token id that logout invalidated before expiry.
type RevokedToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	JTI       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"jti"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	RevokedAt time.Time `gorm:"not null" json:"revoked_at"`
}

func (rt *RevokedToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

func (rt *RevokedToken) TableName() string {
	return "revoked_tokens"
}

func (rt *RevokedToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	if rt.RevokedAt.IsZero() {
		rt.RevokedAt = time.Now()
	}
	return nil
}
