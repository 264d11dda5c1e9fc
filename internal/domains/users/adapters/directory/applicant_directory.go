// Package directory exposes user profiles to other bounded contexts.
package directory

import (
	"context"

	adoptiondomain "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/domain"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

var _ adoptionports.ApplicantDirectory = (*ApplicantDirectory)(nil)

// ApplicantDirectory supplies default adoption contact details from the user profile.
type ApplicantDirectory struct {
	users userports.Repository
}

func NewApplicantDirectory(users userports.Repository) *ApplicantDirectory {
	return &ApplicantDirectory{users: users}
}

func (d *ApplicantDirectory) ContactInfo(ctx context.Context, userID string) (adoptiondomain.ContactInfo, error) {
	found, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return adoptiondomain.ContactInfo{}, err
	}
	u := found.Entity
	return adoptiondomain.ContactInfo{
		Phone: u.Phone,
		Email: u.Email,
		Address: adoptiondomain.Address{
			Street:  u.Address.Street,
			City:    u.Address.City,
			State:   u.Address.State,
			ZipCode: u.Address.ZipCode,
		},
	}, nil
}
