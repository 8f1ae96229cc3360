package models

import (
	"time"

	"gorm.io/gorm"
)

// StudySession is an append-only log entry. Rows are never mutated or
// individually deleted; they only go away with their subject.
type StudySession struct {
	gorm.Model

	Duration  int       `gorm:"not null"` // minutes
	StartTime time.Time `gorm:"not null"`
	SubjectID uint      `gorm:"not null;index"`

	// Relationships
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
