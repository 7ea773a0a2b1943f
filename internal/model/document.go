package model

// Document is a stored proposal, budget, report or letter.
type Document struct {
	Owned
	Title         string  `json:"title" gorm:"type:varchar(255);not null"`
	Kind          string  `json:"kind" gorm:"type:varchar(32);index;not null"`
	Content       string  `json:"content" gorm:"type:text"`
	ApplicationID *string `json:"applicationId,omitempty" gorm:"type:varchar(36);index"`
}
