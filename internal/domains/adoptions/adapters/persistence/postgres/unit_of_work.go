package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petspostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
)

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

// UnitOfWork runs each callback in a database transaction. Repositories handed to the
// callback are bound to the transaction, so GetByIDForUpdate holds the pet row lock until
// commit or rollback.
type UnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores ports.Stores) error) error {
	if u == nil || u.db == nil {
		return errors.New("postgres unit of work not configured")
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, ports.Stores{
			Pets:      petspostgres.NewRepository(tx),
			Adoptions: NewRepository(tx),
		})
	})
}
