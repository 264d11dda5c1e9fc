package adoptionserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	pethttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// PetAPI serves the pet catalogue.
type PetAPI struct {
	service petports.Service
}

func NewPetAPI(service petports.Service) PetAPI {
	return PetAPI{service: service}
}

// Get /api/pets
// Lists pets with filters and paging
func (api PetAPI) ListPets(c *gin.Context) {
	input, err := listPetsQuery(c)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	page, err := api.service.List(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromPage(page))
}

// Get /api/pets/:id
func (api PetAPI) GetPet(c *gin.Context) {
	pet, err := api.service.GetByID(c.Request.Context(), pettypes.PetIdentifier{ID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// Post /api/pets
// Lists a new pet; admin only
func (api PetAPI) CreatePet(c *gin.Context) {
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	created, err := api.service.Create(c.Request.Context(), pettypes.CreatePetInput{
		Actor:            currentActor(c),
		PetMutationInput: pethttpmapper.ToMutationInput(payload),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pethttpmapper.FromProjection(created))
}

// Put /api/pets/:id
// Partially updates a pet profile; admin only. Status is not writable here.
func (api PetAPI) UpdatePet(c *gin.Context) {
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), pettypes.UpdatePetInput{
		Actor:            currentActor(c),
		ID:               c.Param("id"),
		PetMutationInput: pethttpmapper.ToMutationInput(payload),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(updated))
}

// Delete /api/pets/:id
func (api PetAPI) DeletePet(c *gin.Context) {
	err := api.service.Delete(c.Request.Context(), pettypes.DeletePetInput{Actor: currentActor(c), ID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Pet deleted successfully"})
}

func listPetsQuery(c *gin.Context) (pettypes.ListPetsInput, error) {
	input := pettypes.ListPetsInput{
		Species:  c.Query("type"),
		Gender:   c.Query("gender"),
		Size:     c.Query("size"),
		Status:   c.Query("status"),
		City:     c.Query("city"),
		PostedBy: c.Query("postedBy"),
		Search:   c.Query("search"),
	}
	var err error
	if input.MinAge, err = optionalInt(c, "minAge"); err != nil {
		return input, err
	}
	if input.MaxAge, err = optionalInt(c, "maxAge"); err != nil {
		return input, err
	}
	if page, err := optionalInt(c, "page"); err != nil {
		return input, err
	} else if page != nil {
		input.Page = *page
	}
	if limit, err := optionalInt(c, "limit"); err != nil {
		return input, err
	} else if limit != nil {
		input.Limit = *limit
	}
	return input, nil
}

func optionalInt(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return nil, fmt.Errorf("query parameter %s must be a non-negative integer", name)
	}
	return &value, nil
}
