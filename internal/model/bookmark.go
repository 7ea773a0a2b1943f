package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bookmark pins a public opportunity for a principal. (UserID, OpportunityID)
// is unique.
type Bookmark struct {
	ID            string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID        string    `json:"userId" gorm:"type:varchar(64);not null;uniqueIndex:idx_bookmarks_owner_target"`
	OpportunityID string    `json:"opportunityId" gorm:"type:varchar(36);not null;uniqueIndex:idx_bookmarks_owner_target"`
	Notes         string    `json:"notes" gorm:"type:text"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Opportunity *GrantOpportunity `json:"opportunity,omitempty" gorm:"foreignKey:OpportunityID"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
