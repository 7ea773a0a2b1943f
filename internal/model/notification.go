package model

// Notification is an in-app message for a principal.
type Notification struct {
	Owned
	Title   string `json:"title" gorm:"type:varchar(255);not null"`
	Message string `json:"message" gorm:"type:text"`
	Kind    string `json:"kind" gorm:"type:varchar(32);not null"`
	Read    bool   `json:"read" gorm:"index;default:false"`
}
