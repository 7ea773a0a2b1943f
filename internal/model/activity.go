package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Activity is an append-only audit row describing who did what to which
// entity. It is written in the same transaction as the mutation it describes.
type Activity struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID     string    `json:"userId" gorm:"type:varchar(64);index;not null"`
	Action     string    `json:"action" gorm:"type:varchar(255);not null"`
	EntityType *string   `json:"entityType,omitempty" gorm:"type:varchar(64);index"`
	EntityID   *string   `json:"entityId,omitempty" gorm:"type:varchar(64);index"`
	Details    *string   `json:"details,omitempty" gorm:"type:text"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
