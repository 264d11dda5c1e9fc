package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists adoption applications with GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a GORM-backed repository. Passing a transaction handle scopes every
// call to that transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type adoptionRecord struct {
	ID                 string     `gorm:"primaryKey;column:id;type:varchar(36)"`
	PetID              string     `gorm:"column:pet_id;type:varchar(36);not null;index:idx_adoptions_pet_status"`
	ApplicantID        string     `gorm:"column:applicant_id;type:varchar(36);not null;index"`
	Status             string     `gorm:"column:status;type:varchar(16);not null;index:idx_adoptions_pet_status"`
	ApplicationDate    time.Time  `gorm:"column:application_date;index"`
	ReviewDate         *time.Time `gorm:"column:review_date"`
	ReviewedBy         string     `gorm:"column:reviewed_by;type:varchar(36)"`
	Notes              string     `gorm:"column:notes"`
	LivingSituation    string     `gorm:"column:living_situation"`
	HasOtherPets       bool       `gorm:"column:has_other_pets"`
	ExperienceWithPets string     `gorm:"column:experience_with_pets"`
	ReasonForAdoption  string     `gorm:"column:reason_for_adoption"`
	AgreeToTerms       bool       `gorm:"column:agree_to_terms"`
	Phone              string     `gorm:"column:contact_phone"`
	Email              string     `gorm:"column:contact_email"`
	Street             string     `gorm:"column:contact_street"`
	City               string     `gorm:"column:contact_city"`
	State              string     `gorm:"column:contact_state"`
	ZipCode            string     `gorm:"column:contact_zip_code"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (adoptionRecord) TableName() string { return "adoptions" }

// AutoMigrate creates or updates the adoption tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&adoptionRecord{}, &idempotencyRecord{})
}

func newAdoptionRecord(a *domain.Adoption) adoptionRecord {
	return adoptionRecord{
		ID:                 a.ID,
		PetID:              a.PetID,
		ApplicantID:        a.ApplicantID,
		Status:             string(a.Status),
		ApplicationDate:    a.ApplicationDate.UTC(),
		ReviewDate:         utcPtr(a.ReviewDate),
		ReviewedBy:         a.ReviewedBy,
		Notes:              a.Notes,
		LivingSituation:    a.ApplicantInfo.LivingSituation,
		HasOtherPets:       a.ApplicantInfo.HasOtherPets,
		ExperienceWithPets: a.ApplicantInfo.ExperienceWithPets,
		ReasonForAdoption:  a.ApplicantInfo.ReasonForAdoption,
		AgreeToTerms:       a.ApplicantInfo.AgreeToTerms,
		Phone:              a.ContactInfo.Phone,
		Email:              a.ContactInfo.Email,
		Street:             a.ContactInfo.Address.Street,
		City:               a.ContactInfo.Address.City,
		State:              a.ContactInfo.Address.State,
		ZipCode:            a.ContactInfo.Address.ZipCode,
	}
}

func (r *adoptionRecord) toDomain() *domain.Adoption {
	return &domain.Adoption{
		ID:              r.ID,
		PetID:           r.PetID,
		ApplicantID:     r.ApplicantID,
		Status:          domain.Status(r.Status),
		ApplicationDate: r.ApplicationDate,
		ReviewDate:      utcPtr(r.ReviewDate),
		ReviewedBy:      r.ReviewedBy,
		Notes:           r.Notes,
		ApplicantInfo: domain.ApplicantInfo{
			LivingSituation:    r.LivingSituation,
			HasOtherPets:       r.HasOtherPets,
			ExperienceWithPets: r.ExperienceWithPets,
			ReasonForAdoption:  r.ReasonForAdoption,
			AgreeToTerms:       r.AgreeToTerms,
		},
		ContactInfo: domain.ContactInfo{
			Phone: r.Phone,
			Email: r.Email,
			Address: domain.Address{
				Street:  r.Street,
				City:    r.City,
				State:   r.State,
				ZipCode: r.ZipCode,
			},
		},
	}
}

func (r *Repository) Create(ctx context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if adoption == nil {
		return nil, errors.New("cannot create nil adoption")
	}
	record := newAdoptionRecord(adoption)
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return toProjection(&record), nil
}

func (r *Repository) Update(ctx context.Context, adoption *domain.Adoption) (*adoptiontypes.AdoptionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if adoption == nil {
		return nil, errors.New("cannot update nil adoption")
	}
	record := newAdoptionRecord(adoption)
	result := r.db.WithContext(ctx).Model(&adoptionRecord{}).Where("id = ?", adoption.ID).Updates(map[string]any{
		"status":      record.Status,
		"review_date": record.ReviewDate,
		"reviewed_by": record.ReviewedBy,
		"notes":       record.Notes,
		"updated_at":  r.now().UTC(),
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, adoption.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*adoptiontypes.AdoptionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record adoptionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return toProjection(&record), nil
}

func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*adoptiontypes.AdoptionProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []adoptionRecord
	if err := r.filtered(ctx, filter).
		Order("application_date DESC").
		Order("id DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*adoptiontypes.AdoptionProjection, 0, len(records))
	for i := range records {
		list = append(list, toProjection(&records[i]))
	}
	return list, nil
}

func (r *Repository) Count(ctx context.Context, filter ports.Filter) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *Repository) filtered(ctx context.Context, filter ports.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&adoptionRecord{})
	if filter.PetID != "" {
		query = query.Where("pet_id = ?", filter.PetID)
	}
	if filter.ApplicantID != "" {
		query = query.Where("applicant_id = ?", filter.ApplicantID)
	}
	if filter.ExcludeID != "" {
		query = query.Where("id <> ?", filter.ExcludeID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		query = query.Where("status IN ?", statuses)
	}
	return query
}

func toProjection(record *adoptionRecord) *adoptiontypes.AdoptionProjection {
	return adoptiontypes.NewAdoptionProjection(record.toDomain(), record.CreatedAt, record.UpdatedAt)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres adoption repository not configured")
	}
	return nil
}
