package api

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptionobs "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/observability"
	adoptionpostgres "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/persistence/postgres"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	adoptionports "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/ports"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petobs "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/observability"
	petpostgres "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/persistence/postgres"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userdirectory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/directory"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	platformevents "github.com/Apurer/pet-adoption-api/internal/platform/events"
	"github.com/Apurer/pet-adoption-api/internal/platform/migrations"
	platformobservability "github.com/Apurer/pet-adoption-api/internal/platform/observability"
	platformredis "github.com/Apurer/pet-adoption-api/internal/platform/redis"
	"github.com/Apurer/pet-adoption-api/internal/shared/events"
)

// Components are the decorated application services of one process.
type Components struct {
	Pets      petports.Service
	Adoptions adoptionports.Service
	Users     userports.Service
	Sessions  userports.SessionStore
}

// NewComponents builds every service on db, or on in-memory stores when db is nil.
func NewComponents(db *gorm.DB, cfg Config, instruments *platformobservability.Instruments, publisher events.Publisher) (*Components, error) {
	logger := instruments.Logger
	if publisher == nil {
		publisher = platformevents.NewLogPublisher(logger)
	}
	issuer, err := auth.NewIssuer(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	var (
		petRepo     petports.Repository
		uow         adoptionports.UnitOfWork
		idempotency adoptionports.IdempotencyStore
		userRepo    userports.Repository
		sessions    userports.SessionStore
	)
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		petRepo = petpostgres.NewRepository(db)
		uow = adoptionpostgres.NewUnitOfWork(db)
		idempotency = adoptionpostgres.NewIdempotencyStore(db)
		userRepo = userpostgres.NewRepository(db)
		sessions = userpostgres.NewSessionStore(db)
	} else {
		pets := petmemory.NewRepository()
		petRepo = pets
		uow = adoptionmemory.NewUnitOfWork(pets, adoptionmemory.NewRepository())
		idempotency = adoptionmemory.NewIdempotencyStore()
		userRepo = usermemory.NewRepository()
		sessions = usermemory.NewSessionStore()
	}

	petService := petobs.New(
		petsapp.NewService(petRepo, petsapp.WithPublisher(publisher), petsapp.WithLogger(logger)),
		petobs.WithLogger(logger),
		petobs.WithTracer(instruments.Tracer("internal.pets.application")),
		petobs.WithMeter(instruments.Meter("internal.pets.application")),
	)
	adoptionService := adoptionobs.New(
		adoptionapp.NewService(uow,
			adoptionapp.WithApplicantDirectory(userdirectory.NewApplicantDirectory(userRepo)),
			adoptionapp.WithIdempotencyStore(idempotency),
			adoptionapp.WithPublisher(publisher),
			adoptionapp.WithLogger(logger),
			adoptionapp.WithPolicy(adoptionapp.Policy{
				StrictDecisions:     cfg.StrictDecisions,
				AutoRejectCompeting: cfg.AutoRejectCompeting,
			}),
		),
		adoptionobs.WithLogger(logger),
		adoptionobs.WithTracer(instruments.Tracer("internal.adoptions.application")),
		adoptionobs.WithMeter(instruments.Meter("internal.adoptions.application")),
	)
	userService := userobs.New(
		userapp.NewService(userRepo, sessions, issuer,
			userapp.WithSessionTTL(cfg.SessionTTL),
			userapp.WithLogger(logger),
		),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	return &Components{
		Pets:      petService,
		Adoptions: adoptionService,
		Users:     userService,
		Sessions:  sessions,
	}, nil
}

// BootstrapAdmin creates or promotes the configured admin account.
func (c *Components) BootstrapAdmin(ctx context.Context, cfg Config, logger *slog.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	admin, err := c.Users.BootstrapAdmin(ctx, usertypes.BootstrapAdminInput{Email: cfg.AdminEmail, Password: cfg.AdminPassword})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	logger.Info("admin account ready", slog.String("user_id", admin.Entity.ID))
	return nil
}

// BuildPublisher streams events to Redis when configured and logs them otherwise.
// The returned cleanup closes the Redis client.
func BuildPublisher(ctx context.Context, cfg Config, logger *slog.Logger) (events.Publisher, func()) {
	logPublisher := platformevents.NewLogPublisher(logger)
	if cfg.RedisAddr == "" {
		return logPublisher, func() {}
	}
	rdb, err := platformredis.Connect(ctx, platformredis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, domain events go to the log only", slog.String("error", err.Error()))
		return logPublisher, func() {}
	}
	logger.Info("domain events streaming to redis", slog.String("stream", cfg.RedisStream))
	publisher := platformevents.NewRedisStreamPublisher(rdb, platformevents.WithStream(cfg.RedisStream))
	return publisher, func() { _ = rdb.Close() }
}
