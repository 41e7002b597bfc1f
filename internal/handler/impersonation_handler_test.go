package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
	"github.com/samedayramps/template-tiny-church/internal/service"
	"github.com/samedayramps/template-tiny-church/pkg/validator"
)

// stubProfileRepo implements only the lookups the impersonation flow
// touches; anything else panics via the embedded nil interface.
type stubProfileRepo struct {
	repository.ProfileRepository
	profiles map[uuid.UUID]*domain.Profile
}

func (r *stubProfileRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return p, nil
}

func (r *stubProfileRepo) GetRole(_ context.Context, id uuid.UUID) (domain.Role, error) {
	p, ok := r.profiles[id]
	if !ok {
		return "", repository.ErrProfileNotFound
	}
	return p.Role, nil
}

type memImpersonationRepo struct {
	sessions map[uuid.UUID]*domain.ImpersonationSession
	profiles map[uuid.UUID]*domain.Profile
}

func (r *memImpersonationRepo) Create(_ context.Context, s *domain.ImpersonationSession) error {
	copied := *s
	r.sessions[s.ID] = &copied
	return nil
}

func (r *memImpersonationRepo) GetActiveByID(_ context.Context, id uuid.UUID) (*domain.ImpersonationRecord, error) {
	s, ok := r.sessions[id]
	if !ok || !s.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrSessionNotFound
	}
	return &domain.ImpersonationRecord{
		ImpersonationSession: *s,
		AdminEmail:           r.profiles[s.AdminID].Email,
		UserEmail:            r.profiles[s.ImpersonatedID].Email,
		UserRole:             r.profiles[s.ImpersonatedID].Role,
	}, nil
}

func (r *memImpersonationRepo) ActiveExists(_ context.Context, id uuid.UUID) (bool, error) {
	s, ok := r.sessions[id]
	return ok && s.ExpiresAt.After(time.Now()), nil
}

func (r *memImpersonationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.sessions, id)
	return nil
}

func (r *memImpersonationRepo) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func (r *memImpersonationRepo) CountActive(_ context.Context) (int, error) {
	return len(r.sessions), nil
}

type impersonationTestEnv struct {
	app    *fiber.App
	admin  *domain.Profile
	user   *domain.Profile
	caller uuid.UUID // identity injected as the authenticated profile
}

func newImpersonationTestEnv(t *testing.T) *impersonationTestEnv {
	t.Helper()

	admin := &domain.Profile{ID: uuid.New(), Email: "admin@example.com", Role: domain.RoleAdmin}
	user := &domain.Profile{ID: uuid.New(), Email: "user@example.com", Role: domain.RoleUser}

	profilesByID := map[uuid.UUID]*domain.Profile{admin.ID: admin, user.ID: user}
	profiles := &stubProfileRepo{profiles: profilesByID}
	sessions := &memImpersonationRepo{
		sessions: make(map[uuid.UUID]*domain.ImpersonationSession),
		profiles: profilesByID,
	}

	svc := service.NewImpersonationService(sessions, profiles, service.NewAdminGuard(profiles), time.Hour)
	h := NewImpersonationHandler(svc, validator.NewValidator(), false, "/admin/users", "/dashboard")

	env := &impersonationTestEnv{admin: admin, user: user, caller: admin.ID}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("profile_id", env.caller)
		return c.Next()
	})
	app.Post("/admin/impersonate", h.Start)
	app.Get("/dashboard/impersonation", h.Status)
	app.Post("/dashboard/impersonation/stop", h.Stop)

	env.app = app
	return env
}

func startRequest(targetID uuid.UUID) *http.Request {
	body, _ := json.Marshal(fiber.Map{"user_id": targetID.String()})
	req := httptest.NewRequest(http.MethodPost, "/admin/impersonate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestImpersonationStartEndpoint(t *testing.T) {
	t.Run("admin gets a readable pointer cookie", func(t *testing.T) {
		env := newImpersonationTestEnv(t)

		resp, err := env.app.Test(startRequest(env.user.ID))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		cookie := findCookie(resp, domain.ImpersonationCookie)
		require.NotNil(t, cookie)
		assert.False(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Equal(t, 3600, cookie.MaxAge)
		_, err = uuid.Parse(cookie.Value)
		assert.NoError(t, err)

		body := decodeBody(t, resp)
		assert.Equal(t, "admin@example.com", body["admin_email"])
		assert.Equal(t, "user@example.com", body["user_email"])
		assert.Equal(t, "/dashboard", body["redirect"])
	})

	t.Run("non-admin is refused without a cookie", func(t *testing.T) {
		env := newImpersonationTestEnv(t)
		env.caller = env.user.ID

		resp, err := env.app.Test(startRequest(env.user.ID))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		assert.Nil(t, findCookie(resp, domain.ImpersonationCookie))
	})

	t.Run("self impersonation is refused", func(t *testing.T) {
		env := newImpersonationTestEnv(t)

		resp, err := env.app.Test(startRequest(env.admin.ID))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Nil(t, findCookie(resp, domain.ImpersonationCookie))
	})

	t.Run("unknown target is refused", func(t *testing.T) {
		env := newImpersonationTestEnv(t)

		resp, err := env.app.Test(startRequest(uuid.New()))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestImpersonationStatusEndpoint(t *testing.T) {
	env := newImpersonationTestEnv(t)

	// No cookie yet.
	req := httptest.NewRequest(http.MethodGet, "/dashboard/impersonation", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["active"])

	// Start, then poll with the returned cookie.
	resp, err = env.app.Test(startRequest(env.user.ID))
	require.NoError(t, err)
	cookie := findCookie(resp, domain.ImpersonationCookie)
	require.NotNil(t, cookie)

	req = httptest.NewRequest(http.MethodGet, "/dashboard/impersonation", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	require.NoError(t, err)

	body = decodeBody(t, resp)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "admin@example.com", body["admin_email"])
	assert.Equal(t, "user@example.com", body["user_email"])
}

func TestImpersonationStopEndpoint(t *testing.T) {
	env := newImpersonationTestEnv(t)

	resp, err := env.app.Test(startRequest(env.user.ID))
	require.NoError(t, err)
	cookie := findCookie(resp, domain.ImpersonationCookie)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/dashboard/impersonation/stop", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	cleared := findCookie(resp, domain.ImpersonationCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	body := decodeBody(t, resp)
	assert.Equal(t, "/admin/users", body["redirect"])

	// The pointer is now dangling; status reports inactive.
	req = httptest.NewRequest(http.MethodGet, "/dashboard/impersonation", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	body = decodeBody(t, resp)
	assert.Equal(t, false, body["active"])

	// Stopping again with the stale pointer still succeeds.
	req = httptest.NewRequest(http.MethodPost, "/dashboard/impersonation/stop", nil)
	req.AddCookie(cookie)
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
