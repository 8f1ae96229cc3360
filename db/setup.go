package db

import (
	"github.com/glebarez/sqlite"
	"github.com/studyhub-dev/studyhub/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

// ConnectSQLite opens an embedded database, used by tests and by local
// runs without a DATABASE_URL. Pass ":memory:" for a throwaway database.
func ConnectSQLite(path string) error {
	var err error

	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise get its own empty database.
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return nil
}

func allModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Subject{},
		&models.SubjectMember{},
		&models.Task{},
		&models.StudySession{},
		&models.Message{},
		&models.Tag{},
		&models.Priority{},
		&models.Color{},
		&models.Status{},
	}
}

func MigrateDatabase() error {
	migrator := DB.Migrator()

	for _, model := range allModels() {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedLookups inserts the reference data once; tables that already hold
// rows are left alone so reseeding is idempotent.
func SeedLookups() error {
	var count int64

	if err := DB.Model(&models.Tag{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		tags := []models.Tag{{Name: "urgent"}, {Name: "exam"}, {Name: "general"}}
		if err := DB.Create(&tags).Error; err != nil {
			return err
		}
	}

	if err := DB.Model(&models.Priority{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		priorities := []models.Priority{
			{Level: "high", Weight: 1},
			{Level: "normal", Weight: 2},
			{Level: "low", Weight: 3},
		}
		if err := DB.Create(&priorities).Error; err != nil {
			return err
		}
	}

	if err := DB.Model(&models.Color{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		colors := []models.Color{
			{Name: "blue", HexCode: "#007BFF"},
			{Name: "orange", HexCode: "#FF6B4A"},
			{Name: "green", HexCode: "#28A745"},
		}
		if err := DB.Create(&colors).Error; err != nil {
			return err
		}
	}

	if err := DB.Model(&models.Status{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		statuses := []models.Status{{Label: "pending"}, {Label: "completed"}}
		if err := DB.Create(&statuses).Error; err != nil {
			return err
		}
	}

	return nil
}

// ResetDatabase drops every table and rebuilds the schema with fresh
// lookup data.
func ResetDatabase() error {
	migrator := DB.Migrator()

	if migrator.HasTable("task_tags") {
		if err := migrator.DropTable("task_tags"); err != nil {
			return err
		}
	}

	for _, model := range allModels() {
		if migrator.HasTable(model) {
			if err := migrator.DropTable(model); err != nil {
				return err
			}
		}
	}

	if err := MigrateDatabase(); err != nil {
		return err
	}

	return SeedLookups()
}
