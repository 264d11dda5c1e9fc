package domain

import (
	"errors"
	"strings"
	"time"
)

// Status is the lifecycle state of an adoption application.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusCancelled Status = "Cancelled"
)

// Terminal reports whether no applicant action can move the application any more.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Active reports whether the application still blocks a second one by the same applicant.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusApproved
}

// ParseDecision validates an admin decision target.
func ParseDecision(value string) (Status, error) {
	switch Status(value) {
	case StatusApproved, StatusRejected, StatusCancelled:
		return Status(value), nil
	}
	return "", ErrInvalidDecision
}

// ApplicantInfo is the questionnaire filled in by the applicant.
type ApplicantInfo struct {
	LivingSituation    string
	HasOtherPets       bool
	ExperienceWithPets string
	ReasonForAdoption  string
	AgreeToTerms       bool
}

type Address struct {
	Street  string
	City    string
	State   string
	ZipCode string
}

// ContactInfo tells the shelter how to reach the applicant.
type ContactInfo struct {
	Phone   string
	Email   string
	Address Address
}

// Empty reports whether no contact field was supplied.
func (c ContactInfo) Empty() bool {
	return c == ContactInfo{}
}

// Adoption is the aggregate recording one user's application for one pet.
type Adoption struct {
	ID              string
	PetID           string
	ApplicantID     string
	Status          Status
	ApplicationDate time.Time
	ReviewDate      *time.Time
	ReviewedBy      string
	Notes           string
	ApplicantInfo   ApplicantInfo
	ContactInfo     ContactInfo
}

var (
	ErrTermsNotAccepted = errors.New("you must agree to the adoption terms")
	ErrMissingPet       = errors.New("adoption must reference a pet")
	ErrMissingApplicant = errors.New("adoption must reference an applicant")
	ErrInvalidDecision  = errors.New("decision must be Approved, Rejected or Cancelled")
	ErrNotPending       = errors.New("only pending applications can be cancelled")
	ErrAlreadyDecided   = errors.New("application has already been decided")
)

// NewAdoption opens a Pending application.
func NewAdoption(id, petID, applicantID string, info ApplicantInfo, contact ContactInfo, notes string, at time.Time) (*Adoption, error) {
	if strings.TrimSpace(petID) == "" {
		return nil, ErrMissingPet
	}
	if strings.TrimSpace(applicantID) == "" {
		return nil, ErrMissingApplicant
	}
	if !info.AgreeToTerms {
		return nil, ErrTermsNotAccepted
	}
	return &Adoption{
		ID:              id,
		PetID:           petID,
		ApplicantID:     applicantID,
		Status:          StatusPending,
		ApplicationDate: at,
		Notes:           notes,
		ApplicantInfo:   info,
		ContactInfo:     contact,
	}, nil
}

// Decide records an admin decision. Notes are only overwritten when supplied.
func (a *Adoption) Decide(target Status, reviewer, notes string, at time.Time) error {
	if _, err := ParseDecision(string(target)); err != nil {
		return err
	}
	a.Status = target
	reviewed := at
	a.ReviewDate = &reviewed
	a.ReviewedBy = reviewer
	if notes != "" {
		a.Notes = notes
	}
	return nil
}

// Cancel withdraws a Pending application on behalf of the applicant.
func (a *Adoption) Cancel() error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	a.Status = StatusCancelled
	return nil
}

// Clone returns a deep copy.
func (a *Adoption) Clone() *Adoption {
	if a == nil {
		return nil
	}
	clone := *a
	if a.ReviewDate != nil {
		reviewed := *a.ReviewDate
		clone.ReviewDate = &reviewed
	}
	return &clone
}
