package models

import "gorm.io/gorm"

const (
	MemberPending  = "pending"
	MemberAccepted = "accepted"
)

type SubjectMember struct {
	gorm.Model

	UserID    uint   `gorm:"not null;uniqueIndex:idx_subject_user"`
	SubjectID uint   `gorm:"not null;uniqueIndex:idx_subject_user"`
	Status    string `gorm:"not null;default:pending"`
	IsOwner   bool   `gorm:"not null;default:false"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Subject Subject `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
