package models

import "gorm.io/gorm"

// Task status ids, fixed by the seed data.
const (
	StatusPending   uint = 1
	StatusCompleted uint = 2
)

// Tag labels tasks; attached through the task_tags join table.
type Tag struct {
	gorm.Model

	Name string `gorm:"not null"`
}

// Priority weights sort tasks: lower weight means higher importance.
type Priority struct {
	gorm.Model

	Level  string `gorm:"not null"`
	Weight int    `gorm:"not null"`
}

// Color is the UI theme palette for subjects.
type Color struct {
	gorm.Model

	Name    string `gorm:"not null"`
	HexCode string `gorm:"not null"`
}

// Status is the task progress state (pending/completed).
type Status struct {
	gorm.Model

	Label string `gorm:"not null"`
}
