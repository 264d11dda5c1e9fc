package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validProfile() Profile {
	return Profile{
		Name:        "  Rex ",
		Species:     SpeciesDog,
		Age:         3,
		Gender:      GenderMale,
		Size:        SizeMedium,
		Description: "Friendly",
		Images:      []string{"rex.jpg"},
	}
}

func TestNewPet_StartsAvailableWithNormalizedProfile(t *testing.T) {
	pet, err := NewPet("p1", "admin", validProfile())
	require.NoError(t, err)
	require.Equal(t, StatusAvailable, pet.Status)
	require.Equal(t, "Rex", pet.Profile.Name)
	require.Equal(t, AgeUnitMonths, pet.Profile.AgeUnit)
	require.True(t, pet.IsAvailable())
}

func TestNewPet_Validation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Profile)
		want   error
	}{
		"empty name":        {func(p *Profile) { p.Name = " " }, ErrEmptyName},
		"unknown species":   {func(p *Profile) { p.Species = "Lizard" }, ErrInvalidSpecies},
		"negative age":      {func(p *Profile) { p.Age = -1 }, ErrInvalidAge},
		"bad age unit":      {func(p *Profile) { p.AgeUnit = "weeks" }, ErrInvalidAgeUnit},
		"bad gender":        {func(p *Profile) { p.Gender = "x" }, ErrInvalidGender},
		"bad size":          {func(p *Profile) { p.Size = "Huge" }, ErrInvalidSize},
		"empty description": {func(p *Profile) { p.Description = "" }, ErrEmptyDescription},
		"negative fee":      {func(p *Profile) { p.AdoptionFee = -5 }, ErrInvalidFee},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			profile := validProfile()
			tc.mutate(&profile)
			_, err := NewPet("p1", "admin", profile)
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := NewPet("p1", "", validProfile())
	require.ErrorIs(t, err, ErrMissingPoster)
}

func TestApplyDerivedStatus_KeepsAdopterOnlyWhenAdopted(t *testing.T) {
	pet, err := NewPet("p1", "admin", validProfile())
	require.NoError(t, err)

	require.NoError(t, pet.ApplyDerivedStatus(StatusAdopted, "u1"))
	require.Equal(t, "u1", pet.AdoptedBy)

	require.NoError(t, pet.ApplyDerivedStatus(StatusPending, "u1"))
	require.Equal(t, StatusPending, pet.Status)
	require.Empty(t, pet.AdoptedBy)

	require.ErrorIs(t, pet.ApplyDerivedStatus(StatusNotAvailable, ""), ErrInvalidStatus)
}

func TestMarkPending_OnlyFromAvailable(t *testing.T) {
	pet, err := NewPet("p1", "admin", validProfile())
	require.NoError(t, err)

	require.NoError(t, pet.MarkPending())
	require.Equal(t, StatusPending, pet.Status)
	require.ErrorIs(t, pet.MarkPending(), ErrNotAvailable)

	pet.HoldManually()
	require.ErrorIs(t, pet.MarkPending(), ErrNotAvailable)
}

func TestHoldManually(t *testing.T) {
	pet, err := NewPet("p1", "admin", validProfile())
	require.NoError(t, err)
	pet.HoldManually()
	require.True(t, pet.OnHold())
	require.False(t, pet.IsAvailable())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("Not Available")
	require.NoError(t, err)
	require.Equal(t, StatusNotAvailable, status)

	_, err = ParseStatus("available")
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestClone_CopiesSlices(t *testing.T) {
	pet, err := NewPet("p1", "admin", validProfile())
	require.NoError(t, err)
	clone := pet.Clone()
	clone.Profile.Images[0] = "other.jpg"
	require.Equal(t, "rex.jpg", pet.Profile.Images[0])
}
