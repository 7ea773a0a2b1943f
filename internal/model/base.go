package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Owned is embedded by every tenant-owned record. UserID is the owning
// principal and is never taken from client input.
type Owned struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"userId" gorm:"type:varchar(64);index;not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (o *Owned) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// MaxPrincipalIDLen bounds principal IDs to the width of the user_id and
// entity_id columns.
const MaxPrincipalIDLen = 64

// Principal is the authenticated caller of a request. It is resolved by the
// identity provider and never persisted here.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
