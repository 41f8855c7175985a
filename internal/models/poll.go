package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Poll is a question with an ordered option list. Counts live on PollOption and the
// voter ledger on PollVoter; both are removed together with the poll.
type Poll struct {
	ID        string       `gorm:"type:uuid;primaryKey"`
	Question  string       `gorm:"type:text;not null"`
	CreatedBy string       `gorm:"type:uuid;not null;index"`
	Creator   User         `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Options   []PollOption `gorm:"foreignKey:PollID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Voters    []PollVoter  `gorm:"foreignKey:PollID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time    `gorm:"index"`
	UpdatedAt time.Time    `gorm:"index"`
}

func (p *Poll) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PollOption is one answer of a poll. Position is the option index exposed to clients.
type PollOption struct {
	PollID   string `gorm:"type:uuid;primaryKey"`
	Position int    `gorm:"primaryKey;autoIncrement:false"`
	Text     string `gorm:"type:text;not null"`
	Votes    int    `gorm:"not null;default:0"`
}

// PollVoter records which option a user picked. The composite primary key allows
// a single row per (poll, user).
type PollVoter struct {
	PollID      string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"type:uuid;primaryKey;index"`
	OptionIndex int       `gorm:"not null"`
	CreatedAt   time.Time
}
