package models

import (
	"github.com/smartpharmacy/crm_backend/config"
)

func MigrateModels() {
	db := config.GetDB()
	logger := config.GetLogger()

	err := db.AutoMigrate(
		&User{},
		&Staff{},
		&Customer{},
		&Product{},
		&SalesTransaction{},
		&Task{},
		&IngestionRun{},
	)
	if err != nil {
		logger.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migration completed")
}
