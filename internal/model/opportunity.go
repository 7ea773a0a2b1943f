package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrantOpportunity is a public catalog entry. It has no owner and is
// readable without a session.
type GrantOpportunity struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title       string     `json:"title" gorm:"type:varchar(255);not null"`
	Funder      string     `json:"funder" gorm:"type:varchar(255);index"`
	Description string     `json:"description" gorm:"type:text"`
	Category    string     `json:"category" gorm:"type:varchar(100);index"`
	AmountMin   *float64   `json:"amountMin,omitempty"`
	AmountMax   *float64   `json:"amountMax,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty" gorm:"index"`
	URL         string     `json:"url" gorm:"type:varchar(500)"`
	Status      string     `json:"status" gorm:"type:varchar(32);index;default:'open'"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Bookmarked is filled per request for signed-in callers.
	Bookmarked *bool `json:"bookmarked,omitempty" gorm:"-"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (g *GrantOpportunity) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
