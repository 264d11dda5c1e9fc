package adoptionserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/http/mapper"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
)

// AuthAPI handles registration and sessions.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /api/auth/register
// Registers an account and logs it in
func (api AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := api.service.Register(ctx, userhttpmapper.ToRegisterInput(payload)); err != nil {
		respondError(c, err)
		return
	}
	result, err := api.service.Login(ctx, usertypes.LoginInput{Email: payload.Email, Password: payload.Password})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromLogin(result))
}

// Post /api/auth/login
func (api AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.LoginRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := api.service.Login(c.Request.Context(), userhttpmapper.ToLoginInput(payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromLogin(result))
}

// Post /api/auth/logout
// Ends the session behind the bearer token
func (api AuthAPI) Logout(c *gin.Context) {
	token, _ := bearerToken(c)
	if err := api.service.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Get /api/auth/me
func (api AuthAPI) Me(c *gin.Context) {
	user, err := api.service.Me(c.Request.Context(), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromProjection(user))
}
