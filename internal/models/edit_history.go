package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EditHistory is an append-only audit record of a due-date change. It does
// NOT use BaseModel because history rows are never updated; they are deleted
// only when their owning request is deleted.
type EditHistory struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RequestID uuid.UUID `json:"requestId" gorm:"type:uuid;not null;index"`
	EditedBy  string    `json:"editedBy" gorm:"type:varchar(255);not null"`
	OldDate   time.Time `json:"oldDate" gorm:"not null"`
	NewDate   time.Time `json:"newDate" gorm:"not null"`
	Reason    string    `json:"reason" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
}

func (e *EditHistory) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (EditHistory) TableName() string {
	return "edit_histories"
}
