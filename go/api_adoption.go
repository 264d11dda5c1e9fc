package adoptionserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	adoptionhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptiontypes "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application/types"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	pethttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/http/mapper"
	pettypes "github.com/Apurer/pet-adoption-api/internal/domains/pets/application/types"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
)

// IdempotencyKeyHeader lets clients retry a submission safely.
const IdempotencyKeyHeader = "Idempotency-Key"

// AdoptionAPI wires HTTP transport with the adoptions service and its decision workflows.
type AdoptionAPI struct {
	service   adoptionports.Service
	workflows adoptionports.WorkflowOrchestrator
	pets      petports.Service
}

// NewAdoptionAPI creates the adoption handlers. A nil orchestrator runs decisions on the service directly.
func NewAdoptionAPI(service adoptionports.Service, workflows adoptionports.WorkflowOrchestrator, pets petports.Service) AdoptionAPI {
	return AdoptionAPI{service: service, workflows: workflows, pets: pets}
}

// Post /api/adoptions
// Submits an application; the pet becomes Pending
func (api AdoptionAPI) SubmitAdoption(c *gin.Context) {
	var payload adoptionhttpmapper.SubmitRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Submit(c.Request.Context(), adoptiontypes.SubmitInput{
		Actor:          currentActor(c),
		PetID:          payload.PetID,
		ApplicantInfo:  adoptionhttpmapper.ToApplicantInfoInput(payload.ApplicantInfo),
		ContactInfo:    adoptionhttpmapper.ToContactInfoInput(payload.ContactInfo),
		Notes:          payload.Notes,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
		Admit:          deferredAdmission(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
		c.Header("Idempotent-Replayed", "true")
	}
	c.JSON(status, adoptionhttpmapper.FromProjection(result.Adoption, result.Pet))
}

// Get /api/adoptions
// Own applications for users; every application for admins, filterable by status and petId
func (api AdoptionAPI) ListAdoptions(c *gin.Context) {
	list, err := api.service.List(c.Request.Context(), adoptiontypes.ListAdoptionsInput{
		Actor:  currentActor(c),
		Status: c.Query("status"),
		PetID:  c.Query("petId"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjections(list))
}

// Get /api/adoptions/:id
func (api AdoptionAPI) GetAdoption(c *gin.Context) {
	ctx := c.Request.Context()
	adoption, err := api.service.Get(ctx, adoptiontypes.GetAdoptionInput{Actor: currentActor(c), AdoptionID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(adoption, api.lookupPet(ctx, adoption.Adoption.PetID)))
}

// Put /api/adoptions/:id/status
// Approves, rejects or cancels an application; admin only
func (api AdoptionAPI) DecideAdoption(c *gin.Context) {
	var payload adoptionhttpmapper.DecisionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := adoptiontypes.DecideInput{
		Actor:      currentActor(c),
		AdoptionID: c.Param("id"),
		Status:     payload.Status,
		Notes:      payload.Notes,
	}
	var (
		result *adoptiontypes.DecisionResult
		err    error
	)
	if api.workflows != nil {
		result, err = api.workflows.Decide(c.Request.Context(), input)
	} else {
		result, err = api.service.Decide(c.Request.Context(), input)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(result.Adoption, result.Pet))
}

// Put /api/adoptions/:id/cancel
// Withdraws a pending application; the applicant only
func (api AdoptionAPI) CancelAdoption(c *gin.Context) {
	result, err := api.service.Cancel(c.Request.Context(), adoptiontypes.CancelInput{
		Actor:      currentActor(c),
		AdoptionID: c.Param("id"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adoptionhttpmapper.FromProjection(result.Adoption, result.Pet))
}

// Put /api/pets/:id/status
// Puts a pet on hold (Not Available) or releases it (Available); admin only
func (api AdoptionAPI) SetPetStatus(c *gin.Context) {
	var payload pethttpmapper.StatusChange
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	pet, err := api.service.SetManualStatus(c.Request.Context(), adoptiontypes.ManualStatusInput{
		Actor:  currentActor(c),
		PetID:  c.Param("id"),
		Status: payload.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// lookupPet embeds the pet in single-adoption responses; a deleted pet is simply omitted.
func (api AdoptionAPI) lookupPet(ctx context.Context, id string) *pettypes.PetProjection {
	if api.pets == nil || id == "" {
		return nil
	}
	pet, err := api.pets.GetByID(ctx, pettypes.PetIdentifier{ID: id})
	if err != nil {
		return nil
	}
	return pet
}
