package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
)

type normalizedSubmission struct {
	ApplicantID   string                          `json:"applicantId"`
	PetID         string                          `json:"petId"`
	ApplicantInfo adoptiontypes.ApplicantInfoInput `json:"applicantInfo"`
	ContactInfo   *adoptiontypes.ContactInfoInput  `json:"contactInfo"`
	Notes         string                          `json:"notes"`
}

// FingerprintSubmission builds a deterministic hash of the submission (excluding the
// idempotency key). The applicant is part of the hash so a key cannot be replayed by
// another user.
func FingerprintSubmission(input adoptiontypes.SubmitInput) (string, error) {
	normalized := normalizedSubmission{
		ApplicantID:   input.Actor.UserID,
		PetID:         strings.TrimSpace(input.PetID),
		ApplicantInfo: input.ApplicantInfo,
		ContactInfo:   input.ContactInfo,
		Notes:         strings.TrimSpace(input.Notes),
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
