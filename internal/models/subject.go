package models

import "gorm.io/gorm"

// Subject carries no owner column. The owner is the single accepted
// membership row with IsOwner set, written in the same transaction as
// the subject itself.
type Subject struct {
	gorm.Model

	Name    string `gorm:"not null"`
	ColorID *uint  `gorm:"index"`

	// Relationships
	Color         *Color          `gorm:"foreignKey:ColorID"`
	Members       []SubjectMember `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tasks         []Task          `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	StudySessions []StudySession  `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Messages      []Message       `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
