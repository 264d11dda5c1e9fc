package migrations

import (
	"gorm.io/gorm"

	adoptionspostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	userspostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
)

// Run applies the schema of every bounded context.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	steps := []func(*gorm.DB) error{
		petspostgres.AutoMigrate,
		adoptionspostgres.AutoMigrate,
		userspostgres.AutoMigrate,
	}
	for _, step := range steps {
		if err := step(db); err != nil {
			return err
		}
	}
	return nil
}
