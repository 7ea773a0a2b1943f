package model

import (
	"time"

	"gorm.io/datatypes"
)

// Turn is one message in a practice conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// PracticeSession is a rehearsal of a donor meeting against the genie.
type PracticeSession struct {
	Owned
	DonorPersona string                    `json:"donorPersona" gorm:"type:varchar(255);not null"`
	Scenario     string                    `json:"scenario" gorm:"type:text"`
	Status       string                    `json:"status" gorm:"type:varchar(16);index;not null"`
	Transcript   datatypes.JSONSlice[Turn] `json:"transcript"`
	Score        *int                      `json:"score,omitempty"`
	Feedback     string                    `json:"feedback" gorm:"type:text"`
}
