package adoptionserver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/pet-adoption-api/internal/platform/metrics"
	"github.com/Apurer/pet-adoption-api/internal/platform/ratelimit"
	"github.com/Apurer/pet-adoption-api/internal/shared/actor"
)

const actorKey = "adoptionserver.actor"

// Authenticator resolves a bearer token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (actor.Actor, error)
}

// authenticate attaches the caller when an Authorization header is present. A header that
// does not verify is rejected outright rather than treated as anonymous.
func authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present := bearerToken(c)
		if !present {
			c.Next()
			return
		}
		if token == "" || auth == nil {
			respondUnauthorized(c, "malformed Authorization header")
			return
		}
		who, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(actorKey, who)
		c.Next()
	}
}

// requireActor rejects anonymous callers with 401.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentActor(c).Anonymous() {
			respondUnauthorized(c, "authentication required")
			return
		}
		c.Next()
	}
}

// rateLimit throttles per caller, falling back to the client IP. Requests carrying an
// idempotency key defer the check to the handler so a replay of a stored submission is
// never refused.
func rateLimit(limiter *ratelimit.Limiter, m *metrics.HTTP) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := currentActor(c).UserID
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		path := c.FullPath()
		admit := func(context.Context) error {
			if limiter.Allow(key) {
				return nil
			}
			if m != nil {
				m.RecordRateLimited(path)
			}
			return errRateLimited
		}
		if strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)) != "" {
			c.Set(admissionContextKey, admit)
			c.Next()
			return
		}
		if err := admit(c.Request.Context()); err != nil {
			respondTooManyRequests(c)
			return
		}
		c.Next()
	}
}

const admissionContextKey = "adoptionserver.admission"

// deferredAdmission returns the rate check left for the handler, if any.
func deferredAdmission(c *gin.Context) func(context.Context) error {
	if v, ok := c.Get(admissionContextKey); ok {
		if admit, ok := v.(func(context.Context) error); ok {
			return admit
		}
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("actor", currentActor(c).UserID),
		)
	}
}

func currentActor(c *gin.Context) actor.Actor {
	if v, ok := c.Get(actorKey); ok {
		if who, ok := v.(actor.Actor); ok {
			return who
		}
	}
	return actor.Actor{}
}

// bearerToken returns the token and whether an Authorization header was sent at all.
func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
