package model

import "time"

// GrantApplication is a draft or submitted application owned by a principal.
type GrantApplication struct {
	Owned
	OpportunityID *string    `json:"opportunityId,omitempty" gorm:"type:varchar(36);index"`
	Title         string     `json:"title" gorm:"type:varchar(255);not null"`
	Funder        string     `json:"funder" gorm:"type:varchar(255)"`
	Amount        *float64   `json:"amount,omitempty"`
	Status        string     `json:"status" gorm:"type:varchar(32);index;not null"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Content       string     `json:"content" gorm:"type:text"`
	Notes         string     `json:"notes" gorm:"type:text"`
}
