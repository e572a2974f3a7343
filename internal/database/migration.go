package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/NtloyiyaOkuhle/ZikhalaZonke-Music-App/internal/models"
)

func AutoMigrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Song{},
		&models.Rating{},
	}

	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", table, err)
		}
	}

	return nil
}
