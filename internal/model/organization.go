package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrganizationProfile is the singleton nonprofit profile of a principal.
type OrganizationProfile struct {
	ID           string                      `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID       string                      `json:"userId" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name         string                      `json:"name" gorm:"type:varchar(255)"`
	Mission      string                      `json:"mission" gorm:"type:text"`
	EIN          string                      `json:"ein" gorm:"type:varchar(20)"`
	Website      string                      `json:"website" gorm:"type:varchar(500)"`
	Address      string                      `json:"address" gorm:"type:text"`
	AnnualBudget *float64                    `json:"annualBudget,omitempty"`
	FoundedYear  *int                        `json:"foundedYear,omitempty"`
	FocusAreas   datatypes.JSONSlice[string] `json:"focusAreas"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (o *OrganizationProfile) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// NewOrganizationProfile returns the empty profile created on first access.
func NewOrganizationProfile(userID string) *OrganizationProfile {
	return &OrganizationProfile{
		UserID:     userID,
		FocusAreas: datatypes.JSONSlice[string]{},
	}
}
