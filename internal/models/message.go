package models

import (
	"time"

	"gorm.io/gorm"
)

type Message struct {
	gorm.Model

	Content   string    `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index"`
	SenderID  uint      `gorm:"not null;index"`
	SubjectID uint      `gorm:"not null;index"`

	// Relationships
	Sender  User    `gorm:"foreignKey:SenderID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
