package adoptionserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adoptionmemory "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/memory"
	adoptionworkflows "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/adapters/workflows"
	adoptionapp "github.com/Apurer/pet-adoption-api/internal/domains/adoptions/application"
	petmemory "github.com/Apurer/pet-adoption-api/internal/domains/pets/adapters/memory"
	petsapp "github.com/Apurer/pet-adoption-api/internal/domains/pets/application"
	"github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/directory"
	usermemory "github.com/Apurer/pet-adoption-api/internal/domains/users/adapters/memory"
	userapp "github.com/Apurer/pet-adoption-api/internal/domains/users/application"
	usertypes "github.com/Apurer/pet-adoption-api/internal/domains/users/application/types"
	"github.com/Apurer/pet-adoption-api/internal/platform/auth"
	"github.com/Apurer/pet-adoption-api/internal/platform/metrics"
	"github.com/Apurer/pet-adoption-api/internal/platform/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	router  *gin.Engine
	metrics *metrics.HTTP
	admin   string
}

func newTestServer(t *testing.T, submitsPerMinute int) *testServer {
	t.Helper()
	petRepo := petmemory.NewRepository()
	userRepo := usermemory.NewRepository()
	issuer, err := auth.NewIssuer("router-test-secret")
	require.NoError(t, err)

	pets := petsapp.NewService(petRepo)
	users := userapp.NewService(userRepo, usermemory.NewSessionStore(), issuer)
	adoptions := adoptionapp.NewService(
		adoptionmemory.NewUnitOfWork(petRepo, adoptionmemory.NewRepository()),
		adoptionapp.WithApplicantDirectory(directory.NewApplicantDirectory(userRepo)),
		adoptionapp.WithIdempotencyStore(adoptionmemory.NewIdempotencyStore()),
	)
	m := metrics.NewHTTP()
	router := NewRouter(Handlers{
		Auth:      NewAuthAPI(users),
		Pets:      NewPetAPI(pets),
		Users:     NewUserAPI(users),
		Adoptions: NewAdoptionAPI(adoptions, adoptionworkflows.NewInlineAdoptionWorkflows(adoptions), pets),
	}, RouterOptions{
		Authenticator: users,
		Metrics:       m,
		SubmitLimiter: ratelimit.PerMinute(submitsPerMinute),
	})

	_, err = users.BootstrapAdmin(context.Background(), usertypes.BootstrapAdminInput{Email: "admin@shelter.org", Password: "admin-pass"})
	require.NoError(t, err)
	s := &testServer{t: t, router: router, metrics: m}
	s.admin = s.login("admin@shelter.org", "admin-pass")
	return s
}

func (s *testServer) do(method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode(s.t, rec)["token"].(string)
}

func (s *testServer) register(name, email string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": "secret1",
		"phone":    "555-0100",
		"address":  map[string]string{"city": "Austin"},
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(s.t, rec)
	require.NotEmpty(s.t, body["token"])
	return body["token"].(string)
}

func (s *testServer) createPet(name string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/pets", s.admin, map[string]any{
		"name":        name,
		"type":        "Dog",
		"gender":      "Male",
		"size":        "Large",
		"description": "Loves walks",
		"location":    map[string]string{"city": "Austin"},
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(s.t, rec)["id"].(string)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func submitBody(petID string) map[string]any {
	return map[string]any{
		"petId":         petID,
		"applicantInfo": map[string]any{"livingSituation": "House", "agreeToTerms": true},
	}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, 0)
	rec := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", decode(t, rec)["status"])

	rec = s.do(http.MethodGet, "/api/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AuthLifecycle(t *testing.T) {
	s := newTestServer(t, 0)
	token := s.register("Ada", "ada@example.com")

	rec := s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode(t, rec)
	require.Equal(t, "ada@example.com", me["email"])
	require.Equal(t, "user", me["role"])
	require.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPost, "/api/auth/register", "", map[string]any{"name": "Ada", "email": "ADA@example.com", "password": "secret1"})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com", "password": "nope-nope"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodGet, "/api/pets", "", nil, "Authorization", "Basic abc")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PetCatalogue(t *testing.T) {
	s := newTestServer(t, 0)
	user := s.register("Ada", "ada@example.com")

	rec := s.do(http.MethodPost, "/api/pets", user, map[string]any{"name": "Rex", "type": "Dog", "gender": "Male", "size": "Large", "description": "x"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPost, "/api/pets", "", map[string]any{"name": "Rex"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/api/pets", s.admin, map[string]any{"name": "Rex", "type": "Dragon", "gender": "Male", "size": "Large", "description": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	id := s.createPet("Rex")
	s.createPet("Fido")

	rec = s.do(http.MethodGet, "/api/pets?search=rex&city=austin&page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode(t, rec)
	require.EqualValues(t, 1, page["total"])
	require.EqualValues(t, 1, page["currentPage"])

	rec = s.do(http.MethodGet, "/api/pets?minAge=-1", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/pets/"+id, s.admin, map[string]any{"color": "Brown"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode(t, rec)
	require.Equal(t, "Brown", updated["color"])
	require.Equal(t, "Rex", updated["name"])
	require.Equal(t, "Available", updated["status"])

	rec = s.do(http.MethodDelete, "/api/pets/"+id, s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/pets/"+id, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AdoptionWorkflow(t *testing.T) {
	s := newTestServer(t, 0)
	ada := s.register("Ada", "ada@example.com")
	bob := s.register("Bob", "bob@example.com")
	petID := s.createPet("Rex")

	rec := s.do(http.MethodPost, "/api/adoptions", ada, submitBody(petID), IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	submitted := decode(t, rec)
	adoptionID := submitted["id"].(string)
	require.Equal(t, "Pending", submitted["status"])
	require.Equal(t, "Pending", submitted["pet"].(map[string]any)["status"])
	require.Equal(t, "ada@example.com", submitted["contactInfo"].(map[string]any)["email"])

	rec = s.do(http.MethodPost, "/api/adoptions", ada, submitBody(petID), IdempotencyKeyHeader, "key-1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "true", rec.Header().Get("Idempotent-Replayed"))
	require.Equal(t, adoptionID, decode(t, rec)["id"])

	rec = s.do(http.MethodPost, "/api/adoptions", bob, submitBody(petID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decode(t, rec)
	require.Equal(t, "invalid_state", problem["extensions"].(map[string]any)["reason"])

	rec = s.do(http.MethodPost, "/api/adoptions", s.admin, submitBody(petID))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/api/adoptions/"+adoptionID+"/status", ada, map[string]string{"status": "Approved"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPut, "/api/adoptions/"+adoptionID+"/status", s.admin, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/adoptions/"+adoptionID, bob, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, "/api/adoptions/"+adoptionID+"/status", s.admin, map[string]string{"status": "Approved", "notes": "Welcome"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decided := decode(t, rec)
	require.Equal(t, "Approved", decided["status"])
	require.Equal(t, "Welcome", decided["notes"])
	pet := decided["pet"].(map[string]any)
	require.Equal(t, "Adopted", pet["status"])
	require.NotEmpty(t, pet["adoptedBy"])

	rec = s.do(http.MethodPut, "/api/adoptions/"+adoptionID+"/cancel", ada, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/pets/"+petID+"/status", s.admin, map[string]string{"status": "Not Available"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/adoptions", ada, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	require.Len(t, mine, 1)

	rec = s.do(http.MethodGet, "/api/adoptions?status=Approved&petId="+petID, s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 1)
}

func TestRouter_CancelFreesPet(t *testing.T) {
	s := newTestServer(t, 0)
	ada := s.register("Ada", "ada@example.com")
	petID := s.createPet("Rex")

	rec := s.do(http.MethodPost, "/api/adoptions", ada, submitBody(petID))
	require.Equal(t, http.StatusCreated, rec.Code)
	adoptionID := decode(t, rec)["id"].(string)

	rec = s.do(http.MethodPut, "/api/adoptions/"+adoptionID+"/cancel", ada, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cancelled := decode(t, rec)
	require.Equal(t, "Cancelled", cancelled["status"])
	require.Equal(t, "Available", cancelled["pet"].(map[string]any)["status"])

	rec = s.do(http.MethodPut, "/api/pets/"+petID+"/status", s.admin, map[string]string{"status": "Not Available"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Not Available", decode(t, rec)["status"])

	rec = s.do(http.MethodPost, "/api/adoptions", ada, submitBody(petID))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SubmitRateLimit(t *testing.T) {
	s := newTestServer(t, 1)
	ada := s.register("Ada", "ada@example.com")
	first := s.createPet("Rex")
	second := s.createPet("Fido")

	rec := s.do(http.MethodPost, "/api/adoptions", ada, submitBody(first))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/adoptions", ada, submitBody(second))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "pet_adoption_http_rate_limited_total"))
}

func TestRouter_SubmitReplayIsNotRateLimited(t *testing.T) {
	s := newTestServer(t, 1)
	ada := s.register("Ada", "ada@example.com")
	first := s.createPet("Rex")
	second := s.createPet("Fido")

	rec := s.do(http.MethodPost, "/api/adoptions", ada, submitBody(first), IdempotencyKeyHeader, "retry-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	adoptionID := decode(t, rec)["id"]

	rec = s.do(http.MethodPost, "/api/adoptions", ada, submitBody(first), IdempotencyKeyHeader, "retry-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, adoptionID, decode(t, rec)["id"])

	rec = s.do(http.MethodPost, "/api/adoptions", ada, submitBody(second), IdempotencyKeyHeader, "retry-2")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "60", rec.Header().Get("Retry-After"))

	rec = s.do(http.MethodGet, "/api/pets/"+second, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Available", decode(t, rec)["status"])
}

func TestRouter_UserAccounts(t *testing.T) {
	s := newTestServer(t, 0)
	ada := s.register("Ada", "ada@example.com")
	s.register("Bob", "bob@example.com")

	rec := s.do(http.MethodGet, "/api/users", ada, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/users", s.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 3)

	me := decode(t, s.do(http.MethodGet, "/api/auth/me", ada, nil))
	adaID := me["id"].(string)
	rec = s.do(http.MethodPut, "/api/users/"+adaID, ada, map[string]any{"phone": "555-9999"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "555-9999", decode(t, rec)["phone"])

	var bobID string
	for _, u := range users {
		if u["email"] == "bob@example.com" {
			bobID = u["id"].(string)
		}
	}
	rec = s.do(http.MethodGet, "/api/users/"+bobID, ada, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
