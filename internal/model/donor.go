package model

import "time"

// Donor is a relationship record in the principal's donor CRM.
type Donor struct {
	Owned
	Name          string     `json:"name" gorm:"type:varchar(255);not null"`
	Email         string     `json:"email" gorm:"type:varchar(255)"`
	Organization  string     `json:"organization" gorm:"type:varchar(255)"`
	Phone         string     `json:"phone" gorm:"type:varchar(50)"`
	Notes         string     `json:"notes" gorm:"type:text"`
	TotalGiven    float64    `json:"totalGiven" gorm:"default:0"`
	LastContactAt *time.Time `json:"lastContactAt,omitempty"`
}
