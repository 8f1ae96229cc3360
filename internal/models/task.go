package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	DueDate     *datatypes.Date
	StatusID    uint  `gorm:"not null;default:1"`
	PriorityID  *uint `gorm:"index"`
	SubjectID   uint  `gorm:"not null;index"`
	UserID      uint  `gorm:"not null;index"`

	// Relationships
	Status   Status    `gorm:"foreignKey:StatusID"`
	Priority *Priority `gorm:"foreignKey:PriorityID"`
	Subject  Subject   `gorm:"foreignKey:SubjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User     User      `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Tags     []Tag     `gorm:"many2many:task_tags"`
}
