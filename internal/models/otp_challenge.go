package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPChallenge is a single in-flight login challenge. It does NOT use
// BaseModel because challenge rows are never updated: issuing replaces them
// and verification deletes them.
//
// At most one live challenge exists per email; issuance deletes all prior
// rows for the address before inserting the new one.
type OTPChallenge struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;index"`
	Code      string    `json:"-" gorm:"type:varchar(6);not null"`
	ExpiresAt time.Time `json:"expiresAt" gorm:"not null;index"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

func (o *OTPChallenge) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (OTPChallenge) TableName() string {
	return "otp_challenges"
}
