package models

import (
	"log"

	"github.com/greenstay/carbon_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Hotel{},
		&Level1Category{}, &Level2Category{},
		&EmissionCoefficient{},
		&MaterialConsumption{},
		&ConsumerCount{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
