// Package adoptionserver is the gin HTTP transport of the pet adoption API.
package adoptionserver

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Apurer/pet-adoption-api/internal/platform/metrics"
	"github.com/Apurer/pet-adoption-api/internal/platform/ratelimit"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// Handlers groups the API handlers mounted by NewRouter.
type Handlers struct {
	Auth      AuthAPI
	Pets      PetAPI
	Users     UserAPI
	Adoptions AdoptionAPI
}

// RouterOptions carries cross-cutting dependencies. Nil fields switch the feature off.
type RouterOptions struct {
	ServiceName   string
	Authenticator Authenticator
	Metrics       *metrics.HTTP
	SubmitLimiter *ratelimit.Limiter
	Logger        *slog.Logger
}

// NewRouter builds the engine with every route of the API.
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.ServiceName != "" {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	router.Use(requestLogger(logger))
	router.NoRoute(func(c *gin.Context) {
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail("route not found"))
	})

	api := router.Group("/api")
	api.Use(authenticate(opts.Authenticator))
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/logout", requireActor(), h.Auth.Logout)
	auth.GET("/me", requireActor(), h.Auth.Me)

	pets := api.Group("/pets")
	pets.GET("", h.Pets.ListPets)
	pets.GET("/:id", h.Pets.GetPet)
	pets.POST("", requireActor(), h.Pets.CreatePet)
	pets.PUT("/:id", requireActor(), h.Pets.UpdatePet)
	pets.DELETE("/:id", requireActor(), h.Pets.DeletePet)
	pets.PUT("/:id/status", requireActor(), h.Adoptions.SetPetStatus)

	users := api.Group("/users", requireActor())
	users.GET("", h.Users.ListUsers)
	users.GET("/:id", h.Users.GetUser)
	users.PUT("/:id", h.Users.UpdateUser)

	adoptions := api.Group("/adoptions", requireActor())
	adoptions.GET("", h.Adoptions.ListAdoptions)
	adoptions.GET("/:id", h.Adoptions.GetAdoption)
	submit := []gin.HandlerFunc{}
	if opts.SubmitLimiter != nil {
		submit = append(submit, rateLimit(opts.SubmitLimiter, opts.Metrics))
	}
	adoptions.POST("", append(submit, h.Adoptions.SubmitAdoption)...)
	adoptions.PUT("/:id/status", h.Adoptions.DecideAdoption)
	adoptions.PUT("/:id/cancel", h.Adoptions.CancelAdoption)

	return router
}
