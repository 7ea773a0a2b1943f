package model

import (
	"time"

	"gorm.io/datatypes"
)

// Preference is the singleton settings row of a principal.
type Preference struct {
	UserID               string            `json:"userId" gorm:"type:varchar(64);primaryKey"`
	EmailNotifications   bool              `json:"emailNotifications"`
	DeadlineReminderDays int               `json:"deadlineReminderDays"`
	Theme                string            `json:"theme" gorm:"type:varchar(16)"`
	Settings             datatypes.JSONMap `json:"settings"`
	CreatedAt            time.Time         `json:"createdAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
}

// NewPreference returns the row created on first access.
func NewPreference(userID string) *Preference {
	return &Preference{
		UserID:               userID,
		EmailNotifications:   Defaults.EmailNotifications,
		DeadlineReminderDays: Defaults.DeadlineReminderDays,
		Theme:                Defaults.Theme,
		Settings:             datatypes.JSONMap{},
	}
}
