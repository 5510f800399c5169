package provider

import (
	"context"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const developerEntity = "developer"

var developerProjection = query.Columns(
	"tenant", "email", "username", "first_name", "last_name", "status",
	"created_at", "created_by", "updated_at", "updated_by",
)

func developerFilter(tenant, email string) query.Filter {
	return query.And(query.Eq("tenant", tenant), query.Eq("email", email))
}

func developerKey(tenant, email string) string {
	return tenant + "/" + email
}

// DeveloperSearch lists the emails of a tenant's developers. Order is
// store-defined.
func (p *Provider) DeveloperSearch(ctx context.Context, tenant string) ([]string, error) {
	return p.searchKeys(ctx, developerDesc, query.Eq("tenant", tenant))
}

// DeveloperExists reports whether the developer exists within the tenant.
func (p *Provider) DeveloperExists(ctx context.Context, tenant, email string) (bool, error) {
	return p.keyExists(ctx, developerDesc, developerFilter(tenant, email),
		developerEntity, developerKey(tenant, email))
}

// DeveloperLookup returns the developer with its granted application ids
// attached. Granted companies are attached for shape compatibility but are
// always empty; real company-grant lookup is not simulated.
func (p *Provider) DeveloperLookup(ctx context.Context, tenant, email string) (*Developer, error) {
	row, err := p.readOne(ctx, developerDesc, developerFilter(tenant, email),
		developerProjection, developerEntity, developerKey(tenant, email))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: developerEntity, Key: developerKey(tenant, email)}
	}

	d := &Developer{
		Tenant:       row.String("tenant"),
		Email:        row.String("email"),
		Username:     row.String("username"),
		FirstName:    row.String("first_name"),
		LastName:     row.String("last_name"),
		Status:       row.String("status"),
		Applications: []string{},
		Companies:    []string{},
		Audit:        auditFrom(row),
	}

	grants, err := p.eng.Read(ctx, developerAppDesc, developerFilter(tenant, email), query.Columns("app_id"))
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	for _, g := range grants {
		d.Applications = append(d.Applications, g.String("app_id"))
	}
	return d, nil
}

// DeveloperCreate creates the developer. The tenant must exist and the
// (tenant, email) pair must not.
func (p *Provider) DeveloperCreate(ctx context.Context, d *Developer) (*Developer, error) {
	ok, err := p.TenantExists(ctx, d.Tenant)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fault.NotFoundError{Entity: tenantEntity, Key: d.Tenant}
	}
	exists, err := p.DeveloperExists(ctx, d.Tenant, d.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: developerEntity, Key: developerKey(d.Tenant, d.Email)}
	}

	gen, err := p.eng.Insert(ctx, developerDesc, storage.Payload{}.
		Set("tenant", d.Tenant).
		Set("email", d.Email).
		Set("username", d.Username).
		Set("firstName", d.FirstName).
		Set("lastName", d.LastName).
		Set("status", d.Status),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "developer create", err)
	}
	if err := p.commit(ctx, "developer create"); err != nil {
		return nil, err
	}

	d.Audit = auditFrom(gen)
	if d.Applications == nil {
		d.Applications = []string{}
	}
	d.Companies = []string{}
	return d, nil
}

// DeveloperModify rewrites the developer row under its key. The developer
// must exist.
func (p *Provider) DeveloperModify(ctx context.Context, d *Developer) (*Developer, error) {
	exists, err := p.DeveloperExists(ctx, d.Tenant, d.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: developerEntity, Key: developerKey(d.Tenant, d.Email)}
	}

	gen, err := p.eng.Update(ctx, developerDesc, developerFilter(d.Tenant, d.Email), storage.Payload{}.
		Set("username", d.Username).
		Set("firstName", d.FirstName).
		Set("lastName", d.LastName).
		Set("status", d.Status),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "developer modify", err)
	}
	if err := p.commit(ctx, "developer modify"); err != nil {
		return nil, err
	}
	d.Audit = auditFrom(gen)
	return d, nil
}

// DeveloperDelete removes the developer row and its grant rows. The
// developer must exist.
func (p *Provider) DeveloperDelete(ctx context.Context, tenant, email string) error {
	exists, err := p.DeveloperExists(ctx, tenant, email)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: developerEntity, Key: developerKey(tenant, email)}
	}

	if _, err := p.eng.Delete(ctx, developerAppDesc, developerFilter(tenant, email)); err != nil {
		return p.fail(ctx, "developer delete", err)
	}
	if _, err := p.eng.Delete(ctx, developerCompanyDesc, developerFilter(tenant, email)); err != nil {
		return p.fail(ctx, "developer delete", err)
	}
	if _, err := p.eng.Delete(ctx, developerDesc, developerFilter(tenant, email)); err != nil {
		return p.fail(ctx, "developer delete", err)
	}
	return p.commit(ctx, "developer delete")
}
