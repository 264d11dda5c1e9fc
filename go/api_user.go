package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/http/mapper"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// UserAPI serves account profiles.
type UserAPI struct {
	service userports.Service
}

func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Get /api/users
// Lists all users; admin only
func (api UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context(), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjections(users))
}

// Get /api/users/:id
func (api UserAPI) GetUser(c *gin.Context) {
	user, err := api.service.Get(c.Request.Context(), usertypes.GetUserInput{Actor: currentActor(c), ID: c.Param("id")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(user))
}

// Put /api/users/:id
// Updates a profile; the owner or an admin
func (api UserAPI) UpdateUser(c *gin.Context) {
	var payload userhttpmapper.UpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	input := userhttpmapper.ToUpdateInput(payload)
	input.Actor = currentActor(c)
	input.ID = c.Param("id")
	user, err := api.service.Update(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(user))
}
