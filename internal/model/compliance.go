package model

import "time"

// ComplianceItem tracks a reporting or compliance deadline for an awarded grant.
type ComplianceItem struct {
	Owned
	GrantName   string    `json:"grantName" gorm:"type:varchar(255);not null"`
	Requirement string    `json:"requirement" gorm:"type:text;not null"`
	DueDate     time.Time `json:"dueDate" gorm:"index;not null"`
	Priority    string    `json:"priority" gorm:"type:varchar(16);not null"`
	Status      string    `json:"status" gorm:"type:varchar(32);index;not null"`
	Notes       string    `json:"notes" gorm:"type:text"`
}
