package domain

import petdomain "github.com/Apurer/pet-adoption-api/internal/domains/pets/domain"

// Tally counts a pet's applications per status.
type Tally struct {
	Approved int
	Pending  int
	// Adopter is the applicant of the approved application, when there is one.
	Adopter string
}

// DeriveStatus computes the pet status implied by its applications:
// Adopted when one is approved, Available when none is pending, Pending otherwise.
func DeriveStatus(approved, pending int) petdomain.Status {
	switch {
	case approved > 0:
		return petdomain.StatusAdopted
	case pending == 0:
		return petdomain.StatusAvailable
	default:
		return petdomain.StatusPending
	}
}

// Reconcile moves pet to the status implied by tally. A manual hold survives unless an
// application has been approved. It reports whether the pet changed.
func Reconcile(pet *petdomain.Pet, tally Tally) (bool, error) {
	derived := DeriveStatus(tally.Approved, tally.Pending)
	if pet.OnHold() && derived != petdomain.StatusAdopted {
		return false, nil
	}
	adopter := ""
	if derived == petdomain.StatusAdopted {
		adopter = tally.Adopter
	}
	if pet.Status == derived && pet.AdoptedBy == adopter {
		return false, nil
	}
	if err := pet.ApplyDerivedStatus(derived, adopter); err != nil {
		return false, err
	}
	return true, nil
}
