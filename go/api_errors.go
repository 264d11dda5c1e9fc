package adoptionserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	petports "github.com/Apurer/pet-adoption-api/internal/domains/pets/ports"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	userports "github.com/Apurer/pet-adoption-api/internal/domains/users/ports"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
)

// problems maps application errors to RFC 7807 responses. Unknown errors become 500s.
var problems = apierrors.NewChainedResponder("",
	adoptionProblem,
	petProblem,
	userProblem,
)

var errRateLimited = errors.New("submission rate limit exceeded")

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, errRateLimited) {
		respondTooManyRequests(c)
		return
	}
	problems.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

func respondUnauthorized(c *gin.Context, detail string) {
	apierrors.Respond(c, apierrors.ErrUnauthorized.WithDetail(detail))
}

// Rule violations are reported as 400 preconditions; duplicates and key reuse as 409.
func adoptionProblem(err error) (apierrors.ProblemDetail, bool) {
	kind := adoptionapp.ErrorKind(err)
	var problem apierrors.ProblemDetail
	switch {
	case errors.Is(err, adoptionapp.ErrNotFound):
		problem = apierrors.ErrNotFound
	case errors.Is(err, adoptionapp.ErrValidation):
		problem = apierrors.ErrValidation
	case errors.Is(err, adoptionapp.ErrInvalidState):
		problem = apierrors.ErrPrecondition
	case errors.Is(err, adoptionapp.ErrUnauthorized):
		problem = apierrors.ErrForbidden
	case errors.Is(err, adoptionapp.ErrDuplicate), errors.Is(err, adoptionapp.ErrIdempotencyConflict):
		problem = apierrors.ErrConflict
	default:
		return apierrors.ProblemDetail{}, false
	}
	return problem.WithDetail(err.Error()).WithExtension("reason", kind), true
}

func petProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, petports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, petsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, petsapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func userProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, userports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrAuthentication):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, userapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func respondTooManyRequests(c *gin.Context) {
	c.Header("Retry-After", "60")
	apierrors.Respond(c, apierrors.ErrTooManyRequests.WithDetail("too many adoption requests, try again later"))
}
