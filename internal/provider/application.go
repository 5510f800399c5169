package provider

import (
	"context"

	"github.com/google/uuid"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const applicationEntity = "application"

var applicationProjection = query.Columns(
	"tenant", "app_id", "name", "display_name", "status", "developer",
	"created_at", "created_by", "updated_at", "updated_by",
)

func applicationFilter(tenant, id string) query.Filter {
	return query.And(query.Eq("tenant", tenant), query.Eq("app_id", id))
}

func applicationKey(tenant, id string) string {
	return tenant + "/" + id
}

// ApplicationSearch lists the ids of a tenant's applications. Order is
// store-defined.
func (p *Provider) ApplicationSearch(ctx context.Context, tenant string) ([]string, error) {
	return p.searchKeys(ctx, applicationDesc, query.Eq("tenant", tenant))
}

// ApplicationExists reports whether the application exists within the
// tenant.
func (p *Provider) ApplicationExists(ctx context.Context, tenant, id string) (bool, error) {
	return p.keyExists(ctx, applicationDesc, applicationFilter(tenant, id),
		applicationEntity, applicationKey(tenant, id))
}

// ApplicationLookup returns the application.
func (p *Provider) ApplicationLookup(ctx context.Context, tenant, id string) (*Application, error) {
	row, err := p.readOne(ctx, applicationDesc, applicationFilter(tenant, id),
		applicationProjection, applicationEntity, applicationKey(tenant, id))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: applicationEntity, Key: applicationKey(tenant, id)}
	}
	return applicationFromTuple(row), nil
}

// ApplicationCreate creates the application, generating an id when none is
// supplied. The tenant must exist; when a developer email is set the
// developer must exist too and is granted the application in the same
// transaction.
func (p *Provider) ApplicationCreate(ctx context.Context, a *Application) (*Application, error) {
	ok, err := p.TenantExists(ctx, a.Tenant)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fault.NotFoundError{Entity: tenantEntity, Key: a.Tenant}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	exists, err := p.ApplicationExists(ctx, a.Tenant, a.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: applicationEntity, Key: applicationKey(a.Tenant, a.ID)}
	}
	if a.DeveloperEmail != "" {
		ok, err := p.DeveloperExists(ctx, a.Tenant, a.DeveloperEmail)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &fault.NotFoundError{Entity: developerEntity, Key: developerKey(a.Tenant, a.DeveloperEmail)}
		}
	}

	gen, err := p.eng.Insert(ctx, applicationDesc, storage.Payload{}.
		Set("tenant", a.Tenant).
		Set("appId", a.ID).
		Set("name", a.Name).
		Set("displayName", a.DisplayName).
		Set("status", a.Status).
		Set("developer", a.DeveloperEmail),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "application create", err)
	}
	if a.DeveloperEmail != "" {
		_, err := p.eng.Insert(ctx, developerAppDesc, storage.Payload{}.
			Set("tenant", a.Tenant).
			Set("email", a.DeveloperEmail).
			Set("appId", a.ID))
		if err != nil {
			return nil, p.fail(ctx, "application create", err)
		}
	}
	if err := p.commit(ctx, "application create"); err != nil {
		return nil, err
	}
	a.Audit = auditFrom(gen)
	return a, nil
}

// ApplicationModify rewrites the application row under its key. The
// application must exist.
func (p *Provider) ApplicationModify(ctx context.Context, a *Application) (*Application, error) {
	exists, err := p.ApplicationExists(ctx, a.Tenant, a.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: applicationEntity, Key: applicationKey(a.Tenant, a.ID)}
	}

	gen, err := p.eng.Update(ctx, applicationDesc, applicationFilter(a.Tenant, a.ID), storage.Payload{}.
		Set("name", a.Name).
		Set("displayName", a.DisplayName).
		Set("status", a.Status),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "application modify", err)
	}
	if err := p.commit(ctx, "application modify"); err != nil {
		return nil, err
	}
	a.Audit = auditFrom(gen)
	return a, nil
}

// ApplicationDelete removes the application row and any grant rows
// referencing it. The application must exist.
func (p *Provider) ApplicationDelete(ctx context.Context, tenant, id string) error {
	exists, err := p.ApplicationExists(ctx, tenant, id)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: applicationEntity, Key: applicationKey(tenant, id)}
	}

	grantFilter := query.And(query.Eq("tenant", tenant), query.Eq("app_id", id))
	if _, err := p.eng.Delete(ctx, developerAppDesc, grantFilter); err != nil {
		return p.fail(ctx, "application delete", err)
	}
	if _, err := p.eng.Delete(ctx, applicationDesc, applicationFilter(tenant, id)); err != nil {
		return p.fail(ctx, "application delete", err)
	}
	return p.commit(ctx, "application delete")
}

func applicationFromTuple(row storage.Tuple) *Application {
	return &Application{
		Tenant:         row.String("tenant"),
		ID:             row.String("app_id"),
		Name:           row.String("name"),
		DisplayName:    row.String("display_name"),
		Status:         row.String("status"),
		DeveloperEmail: row.String("developer"),
		Audit:          auditFrom(row),
	}
}
