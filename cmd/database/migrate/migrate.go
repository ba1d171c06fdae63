package migration

import (
	"Food-Rescue-Coordinator/entities"
	"Food-Rescue-Coordinator/internal/utils/logger"
	"fmt"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	models := []struct {
		name  string
		model interface{}
	}{
		{"user", &entities.User{}},
		{"organization", &entities.Organization{}},
		{"charity", &entities.Charity{}},
		{"volunteer", &entities.Volunteer{}},
		{"donation", &entities.Donation{}},
		{"pickup", &entities.Pickup{}},
		{"impact metric", &entities.ImpactMetric{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("error migrating %s database: %w", m.name, err)
		}
	}

	logger.InfoLog("Database migration complete")
	return nil
}
