package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/repository"
)

type fakeTenantRepo struct {
	tenants   map[uuid.UUID]*domain.Tenant
	createErr error
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[uuid.UUID]*domain.Tenant)}
}

func (r *fakeTenantRepo) Create(_ context.Context, tenant *domain.Tenant) error {
	if r.createErr != nil {
		return r.createErr
	}
	copied := *tenant
	r.tenants[tenant.ID] = &copied
	return nil
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Tenant, error) {
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, repository.ErrTenantNotFound
	}
	return tenant, nil
}

func (r *fakeTenantRepo) GetByNameOrDomain(_ context.Context, name, domainName string) (*domain.Tenant, error) {
	for _, tenant := range r.tenants {
		if tenant.Name == name || tenant.Domain == domainName {
			return tenant, nil
		}
	}
	return nil, repository.ErrTenantNotFound
}

func (r *fakeTenantRepo) Update(_ context.Context, tenant *domain.Tenant) error {
	if _, ok := r.tenants[tenant.ID]; !ok {
		return repository.ErrTenantNotFound
	}
	copied := *tenant
	r.tenants[tenant.ID] = &copied
	return nil
}

func (r *fakeTenantRepo) SetAdmin(_ context.Context, id uuid.UUID, adminID uuid.UUID) error {
	tenant, ok := r.tenants[id]
	if !ok {
		return repository.ErrTenantNotFound
	}
	tenant.AdminID = &adminID
	return nil
}

func (r *fakeTenantRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.tenants[id]; !ok {
		return repository.ErrTenantNotFound
	}
	delete(r.tenants, id)
	return nil
}

func (r *fakeTenantRepo) List(_ context.Context, limit, offset int) ([]*domain.Tenant, int, error) {
	out := make([]*domain.Tenant, 0, len(r.tenants))
	for _, tenant := range r.tenants {
		out = append(out, tenant)
	}
	return out, len(out), nil
}

func (r *fakeTenantRepo) Count(_ context.Context) (int, error) {
	return len(r.tenants), nil
}

func TestTenantCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("provisions tenant and assigns its admin", func(t *testing.T) {
		admin, candidate := testAdmin(), testUser()
		profiles := newFakeProfileRepo(admin, candidate)
		tenants := newFakeTenantRepo()
		svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

		tenant, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "First.Church.Example.COM",
			AdminID: candidate.ID.String(),
		})
		require.NoError(t, err)

		assert.Equal(t, "First Church", tenant.Name)
		assert.Equal(t, "first.church.example.com", tenant.Domain)
		require.NotNil(t, tenant.AdminID)
		assert.Equal(t, candidate.ID, *tenant.AdminID)

		// The candidate's profile now points back at the tenant.
		require.NotNil(t, candidate.TenantID)
		assert.Equal(t, tenant.ID, *candidate.TenantID)
	})

	t.Run("rejects non-admin caller", func(t *testing.T) {
		caller, candidate := testUser(), testUser()
		profiles := newFakeProfileRepo(caller, candidate)
		svc := NewTenantService(newFakeTenantRepo(), profiles, NewAdminGuard(profiles))

		_, err := svc.Create(ctx, caller.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: candidate.ID.String(),
		})
		assert.ErrorIs(t, err, ErrGuardNotAdmin)
	})

	t.Run("rejects duplicate name or domain", func(t *testing.T) {
		admin, first, second := testAdmin(), testUser(), testUser()
		profiles := newFakeProfileRepo(admin, first, second)
		tenants := newFakeTenantRepo()
		svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

		_, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: first.ID.String(),
		})
		require.NoError(t, err)

		_, err = svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "Second Church",
			Domain:  "church.example.com",
			AdminID: second.ID.String(),
		})
		assert.ErrorIs(t, err, ErrTenantExists)
	})

	t.Run("rejects candidate with the wrong role", func(t *testing.T) {
		admin, other := testAdmin(), testAdmin()
		profiles := newFakeProfileRepo(admin, other)
		svc := NewTenantService(newFakeTenantRepo(), profiles, NewAdminGuard(profiles))

		_, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: other.ID.String(),
		})
		assert.ErrorIs(t, err, ErrAdminCandidateRole)
	})

	t.Run("rejects candidate already assigned to a tenant", func(t *testing.T) {
		admin, candidate := testAdmin(), testUser()
		existing := uuid.New()
		candidate.TenantID = &existing
		profiles := newFakeProfileRepo(admin, candidate)
		svc := NewTenantService(newFakeTenantRepo(), profiles, NewAdminGuard(profiles))

		_, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: candidate.ID.String(),
		})
		assert.ErrorIs(t, err, ErrAdminCandidateTaken)
	})

	t.Run("rolls back the tenant when assignment fails", func(t *testing.T) {
		admin, candidate := testAdmin(), testUser()
		profiles := newFakeProfileRepo(admin, candidate)
		tenants := newFakeTenantRepo()

		failing := &failingSetTenantRepo{fakeProfileRepo: profiles}
		svc := NewTenantService(tenants, failing, NewAdminGuard(profiles))

		_, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: candidate.ID.String(),
		})
		require.Error(t, err)
		assert.Empty(t, tenants.tenants)
	})
}

type failingSetTenantRepo struct {
	*fakeProfileRepo
}

func (r *failingSetTenantRepo) SetTenant(_ context.Context, _ uuid.UUID, _ *uuid.UUID) error {
	return assert.AnError
}

func TestTenantUpdate(t *testing.T) {
	ctx := context.Background()
	admin, candidate := testAdmin(), testUser()
	profiles := newFakeProfileRepo(admin, candidate)
	tenants := newFakeTenantRepo()
	svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

	tenant, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
		Name:    "First Church",
		Domain:  "church.example.com",
		AdminID: candidate.ID.String(),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, admin.ID, tenant.ID, "Renamed Church", "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed Church", updated.Name)
	assert.Equal(t, "church.example.com", updated.Domain)
}

func TestTenantReassignAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("moves ownership and clears the previous admin", func(t *testing.T) {
		admin, first, second := testAdmin(), testUser(), testUser()
		profiles := newFakeProfileRepo(admin, first, second)
		tenants := newFakeTenantRepo()
		svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

		tenant, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: first.ID.String(),
		})
		require.NoError(t, err)

		require.NoError(t, svc.ReassignAdmin(ctx, admin.ID, tenant.ID, second.ID))

		stored, err := svc.Get(ctx, tenant.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AdminID)
		assert.Equal(t, second.ID, *stored.AdminID)
		require.NotNil(t, second.TenantID)
		assert.Equal(t, tenant.ID, *second.TenantID)

		// The old owner no longer points at the tenant.
		assert.Nil(t, first.TenantID)
	})

	t.Run("rejects candidate with the wrong role", func(t *testing.T) {
		admin, first, other := testAdmin(), testUser(), testAdmin()
		profiles := newFakeProfileRepo(admin, first, other)
		tenants := newFakeTenantRepo()
		svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

		tenant, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: first.ID.String(),
		})
		require.NoError(t, err)

		err = svc.ReassignAdmin(ctx, admin.ID, tenant.ID, other.ID)
		assert.ErrorIs(t, err, ErrAdminCandidateRole)
	})

	t.Run("rejects candidate assigned to another tenant", func(t *testing.T) {
		admin, first, second := testAdmin(), testUser(), testUser()
		elsewhere := uuid.New()
		second.TenantID = &elsewhere
		profiles := newFakeProfileRepo(admin, first, second)
		tenants := newFakeTenantRepo()
		svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

		tenant, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
			Name:    "First Church",
			Domain:  "church.example.com",
			AdminID: first.ID.String(),
		})
		require.NoError(t, err)

		err = svc.ReassignAdmin(ctx, admin.ID, tenant.ID, second.ID)
		assert.ErrorIs(t, err, ErrAdminCandidateTaken)

		// Ownership is unchanged.
		stored, err := svc.Get(ctx, tenant.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.AdminID)
		assert.Equal(t, first.ID, *stored.AdminID)
	})
}

func TestTenantDelete(t *testing.T) {
	ctx := context.Background()
	admin, candidate := testAdmin(), testUser()
	profiles := newFakeProfileRepo(admin, candidate)
	tenants := newFakeTenantRepo()
	svc := NewTenantService(tenants, profiles, NewAdminGuard(profiles))

	tenant, err := svc.Create(ctx, admin.ID, CreateTenantRequest{
		Name:    "First Church",
		Domain:  "church.example.com",
		AdminID: candidate.ID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin.ID, tenant.ID))

	_, err = svc.Get(ctx, tenant.ID)
	assert.ErrorIs(t, err, repository.ErrTenantNotFound)
}
