package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/storage"
)

func seedDeveloper(t *testing.T, p *Provider, tenant, email string) {
	t.Helper()
	_, err := p.DeveloperCreate(context.Background(), &Developer{
		Tenant: tenant,
		Email:  email,
		Status: "active",
	})
	require.NoError(t, err)
}

func TestDeveloperRoundTrip(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	created, err := p.DeveloperCreate(ctx, &Developer{
		Tenant:    "acme",
		Email:     "dev@acme.test",
		Username:  "dev",
		FirstName: "Dee",
		LastName:  "Veloper",
		Status:    "active",
	})
	require.NoError(t, err)
	assert.False(t, created.Audit.CreatedAt.IsZero())
	assert.NotNil(t, created.Applications)
	assert.NotNil(t, created.Companies)

	got, err := p.DeveloperLookup(ctx, "acme", "dev@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "Dee", got.FirstName)
	assert.Empty(t, got.Applications)

	got.Status = "inactive"
	_, err = p.DeveloperModify(ctx, got)
	require.NoError(t, err)
	got, err = p.DeveloperLookup(ctx, "acme", "dev@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "inactive", got.Status)

	emails, err := p.DeveloperSearch(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev@acme.test"}, emails)

	require.NoError(t, p.DeveloperDelete(ctx, "acme", "dev@acme.test"))
	_, err = p.DeveloperLookup(ctx, "acme", "dev@acme.test")
	assert.True(t, fault.IsNotFound(err))
}

func TestDeveloperCreateRequiresTenant(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())

	_, err := p.DeveloperCreate(context.Background(), &Developer{Tenant: "ghost", Email: "dev@acme.test"})
	assert.True(t, fault.IsNotFound(err))
}

func TestDeveloperScopedByTenant(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	seedTenant(t, p, "globex")
	seedDeveloper(t, p, "acme", "dev@acme.test")

	_, err := p.DeveloperLookup(ctx, "globex", "dev@acme.test")
	assert.True(t, fault.IsNotFound(err), "same email under another tenant is a different developer")

	seedDeveloper(t, p, "globex", "dev@acme.test")
	emails, err := p.DeveloperSearch(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev@acme.test"}, emails)
}

func TestDeveloperCompaniesAlwaysEmpty(t *testing.T) {
	mem := storage.NewMemory()
	p := newTestProvider(t, mem)
	ctx := context.Background()

	seedTenant(t, p, "acme")
	seedDeveloper(t, p, "acme", "dev@acme.test")

	// Even a raw grant row in the company-grant relation stays invisible.
	injectRow(t, mem, "developer_companies", storage.Payload{}.
		Set("tenant", "acme").
		Set("email", "dev@acme.test").
		Set("company", "ops"))

	got, err := p.DeveloperLookup(ctx, "acme", "dev@acme.test")
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Companies)
}

func TestApplicationCreateGrantsDeveloper(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	seedDeveloper(t, p, "acme", "dev@acme.test")

	app, err := p.ApplicationCreate(ctx, &Application{
		Tenant:         "acme",
		Name:           "weatherapp",
		Status:         "approved",
		DeveloperEmail: "dev@acme.test",
	})
	require.NoError(t, err)
	require.NotEmpty(t, app.ID, "an id is generated when none is supplied")

	dev, err := p.DeveloperLookup(ctx, "acme", "dev@acme.test")
	require.NoError(t, err)
	assert.Equal(t, []string{app.ID}, dev.Applications)
}

func TestApplicationCreateRequiresDeveloper(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	_, err := p.ApplicationCreate(ctx, &Application{
		Tenant:         "acme",
		Name:           "weatherapp",
		DeveloperEmail: "ghost@acme.test",
	})
	assert.True(t, fault.IsNotFound(err))
}

func TestApplicationRoundTrip(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	app, err := p.ApplicationCreate(ctx, &Application{
		Tenant: "acme",
		ID:     "app-1",
		Name:   "weatherapp",
		Status: "pending",
	})
	require.NoError(t, err)

	_, err = p.ApplicationCreate(ctx, &Application{Tenant: "acme", ID: "app-1"})
	assert.True(t, fault.IsConflict(err))

	app.Status = "approved"
	_, err = p.ApplicationModify(ctx, app)
	require.NoError(t, err)
	got, err := p.ApplicationLookup(ctx, "acme", "app-1")
	require.NoError(t, err)
	assert.Equal(t, "approved", got.Status)

	ids, err := p.ApplicationSearch(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"app-1"}, ids)

	require.NoError(t, p.ApplicationDelete(ctx, "acme", "app-1"))
	_, err = p.ApplicationLookup(ctx, "acme", "app-1")
	assert.True(t, fault.IsNotFound(err))
}

func TestApplicationDeleteRemovesGrants(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	seedDeveloper(t, p, "acme", "dev@acme.test")
	app, err := p.ApplicationCreate(ctx, &Application{
		Tenant:         "acme",
		Name:           "weatherapp",
		DeveloperEmail: "dev@acme.test",
	})
	require.NoError(t, err)

	require.NoError(t, p.ApplicationDelete(ctx, "acme", app.ID))

	dev, err := p.DeveloperLookup(ctx, "acme", "dev@acme.test")
	require.NoError(t, err)
	assert.Empty(t, dev.Applications, "the grant goes with the application")
}

func TestDeveloperDeleteRemovesGrants(t *testing.T) {
	p := newTestProvider(t, storage.NewMemory())
	ctx := context.Background()

	seedTenant(t, p, "acme")
	seedDeveloper(t, p, "acme", "dev@acme.test")
	app, err := p.ApplicationCreate(ctx, &Application{
		Tenant:         "acme",
		Name:           "weatherapp",
		DeveloperEmail: "dev@acme.test",
	})
	require.NoError(t, err)

	require.NoError(t, p.DeveloperDelete(ctx, "acme", "dev@acme.test"))

	// The application itself survives; only the grant rows go.
	got, err := p.ApplicationLookup(ctx, "acme", app.ID)
	require.NoError(t, err)
	assert.Equal(t, "weatherapp", got.Name)
}
