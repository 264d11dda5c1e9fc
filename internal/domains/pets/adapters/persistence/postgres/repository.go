package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists pets using GORM-mapped columns. The caller owns the DB lifecycle;
// passing a transaction handle scopes every call to that transaction.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a GORM-backed repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Save inserts or updates a pet aggregate.
func (r *Repository) Save(ctx context.Context, pet *domain.Pet) (*pettypes.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	record := newPetRecord(pet)
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":            record.Name,
				"species":         record.Species,
				"breed":           record.Breed,
				"age":             record.Age,
				"age_unit":        record.AgeUnit,
				"gender":          record.Gender,
				"size":            record.Size,
				"color":           record.Color,
				"description":     record.Description,
				"images":          record.Images,
				"status":          record.Status,
				"city":            record.City,
				"state":           record.State,
				"country":         record.Country,
				"vaccinated":      record.Vaccinated,
				"spayed_neutered": record.SpayedNeutered,
				"health_notes":    record.HealthNotes,
				"special_needs":   record.SpecialNeeds,
				"adoption_fee":    record.AdoptionFee,
				"posted_by":       record.PostedBy,
				"adopted_by":      record.AdoptedBy,
				"updated_at":      record.UpdatedAt,
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pet.ID)
}

// GetByID fetches a pet by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*pettypes.PetProjection, error) {
	return r.get(ctx, r.db, id)
}

// GetByIDForUpdate issues SELECT ... FOR UPDATE so concurrent adoption writers on the same
// pet serialise. Outside a transaction the lock is released immediately.
func (r *Repository) GetByIDForUpdate(ctx context.Context, id string) (*pettypes.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.get(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) get(ctx context.Context, db *gorm.DB, id string) (*pettypes.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record petRecord
	if err := db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toProjection(&record), nil
}

// UpdateProfile writes the descriptive columns only. It blocks while an adoption
// transaction holds the pet row.
func (r *Repository) UpdateProfile(ctx context.Context, id string, profile domain.Profile) (*pettypes.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := newPetRecord(&domain.Pet{ID: id, Profile: profile})
	result := r.db.WithContext(ctx).Model(&petRecord{}).Where("id = ?", id).Updates(map[string]any{
		"name":            record.Name,
		"species":         record.Species,
		"breed":           record.Breed,
		"age":             record.Age,
		"age_unit":        record.AgeUnit,
		"gender":          record.Gender,
		"size":            record.Size,
		"color":           record.Color,
		"description":     record.Description,
		"images":          record.Images,
		"city":            record.City,
		"state":           record.State,
		"country":         record.Country,
		"vaccinated":      record.Vaccinated,
		"spayed_neutered": record.SpayedNeutered,
		"health_notes":    record.HealthNotes,
		"special_needs":   record.SpecialNeeds,
		"adoption_fee":    record.AdoptionFee,
		"updated_at":      r.now().UTC(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a pet by identifier.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&petRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// Find applies the catalogue filter with portable SQL (no ILIKE, no array operators).
func (r *Repository) Find(ctx context.Context, filter ports.Filter) ([]*pettypes.PetProjection, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []petRecord
	page := r.filtered(ctx, filter).Order("created_at DESC").Order("id DESC").Offset(filter.Offset)
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if err := page.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return recordsToProjections(records), total, nil
}

func (r *Repository) filtered(ctx context.Context, filter ports.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&petRecord{})
	if filter.Species != "" {
		query = query.Where("species = ?", string(filter.Species))
	}
	if filter.Gender != "" {
		query = query.Where("gender = ?", string(filter.Gender))
	}
	if filter.Size != "" {
		query = query.Where("size = ?", string(filter.Size))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.PostedBy != "" {
		query = query.Where("posted_by = ?", filter.PostedBy)
	}
	if filter.MinAge != nil {
		query = query.Where("age >= ?", *filter.MinAge)
	}
	if filter.MaxAge != nil {
		query = query.Where("age <= ?", *filter.MaxAge)
	}
	if filter.City != "" {
		query = query.Where(`LOWER(city) LIKE ? ESCAPE '\'`, likePattern(filter.City))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(breed) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern)
	}
	return query
}

// List returns every persisted pet, newest first.
func (r *Repository) List(ctx context.Context) ([]*pettypes.PetProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []petRecord
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return recordsToProjections(records), nil
}

func recordsToProjections(records []petRecord) []*pettypes.PetProjection {
	list := make([]*pettypes.PetProjection, 0, len(records))
	for i := range records {
		list = append(list, toProjection(&records[i]))
	}
	return list
}

func toProjection(record *petRecord) *pettypes.PetProjection {
	return pettypes.NewPetProjection(record.toDomain(), record.CreatedAt, record.UpdatedAt)
}

func likePattern(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(value))
	return "%" + escaped + "%"
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres repository not configured")
	}
	return nil
}
