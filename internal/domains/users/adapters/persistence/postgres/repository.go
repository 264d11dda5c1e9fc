package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// AutoMigrate creates the users and sessions tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &sessionRecord{})
}

type userRecord struct {
	ID           string    `gorm:"primaryKey;column:id;size:36"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Phone        string    `gorm:"column:phone"`
	Street       string    `gorm:"column:street"`
	City         string    `gorm:"column:city"`
	State        string    `gorm:"column:state"`
	ZipCode      string    `gorm:"column:zip_code"`
	Role         string    `gorm:"column:role;not null;default:user"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a user; a taken email yields ports.ErrEmailTaken.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*usertypes.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	now := r.now().UTC()
	record := toRecord(user)
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEmailTaken
		}
		return nil, err
	}
	return record.toProjection(), nil
}

// Update rewrites the profile and role of an existing user.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*usertypes.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	record := toRecord(user)
	result := r.db.WithContext(ctx).Model(&userRecord{}).Where("id = ?", user.ID).Updates(map[string]any{
		"name":          record.Name,
		"email":         record.Email,
		"password_hash": record.PasswordHash,
		"phone":         record.Phone,
		"street":        record.Street,
		"city":          record.City,
		"state":         record.State,
		"zip_code":      record.ZipCode,
		"role":          record.Role,
		"updated_at":    r.now().UTC(),
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrEmailTaken
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, user.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*usertypes.UserProjection, error) {
	return r.first(ctx, "id = ?", strings.TrimSpace(id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*usertypes.UserProjection, error) {
	return r.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

// List returns all users, oldest first.
func (r *Repository) List(ctx context.Context) ([]*usertypes.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*usertypes.UserProjection, 0, len(records))
	for i := range records {
		users = append(users, records[i].toProjection())
	}
	return users, nil
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*usertypes.UserProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
	if err := r.db.WithContext(ctx).Where(query, arg).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toProjection(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Phone:        user.Phone,
		Street:       user.Address.Street,
		City:         user.Address.City,
		State:        user.Address.State,
		ZipCode:      user.Address.ZipCode,
		Role:         string(user.Role),
	}
}

func (r userRecord) toProjection() *usertypes.UserProjection {
	role := actor.Role(r.Role)
	if role == "" {
		role = actor.RoleUser
	}
	user := &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Phone:        r.Phone,
		Address: domain.Address{
			Street:  r.Street,
			City:    r.City,
			State:   r.State,
			ZipCode: r.ZipCode,
		},
		Role: role,
	}
	return usertypes.NewUserProjection(user, r.CreatedAt, r.UpdatedAt)
}
