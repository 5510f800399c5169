package provider

import (
	"context"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const companyEntity = "company"

var companyProjection = query.Columns(
	"tenant", "name", "display_name", "status",
	"created_at", "created_by", "updated_at", "updated_by",
)

func companyFilter(tenant, name string) query.Filter {
	return query.And(query.Eq("tenant", tenant), query.Eq("name", name))
}

func companyKey(tenant, name string) string {
	return tenant + "/" + name
}

// CompanySearch lists the names of a tenant's companies. Order is
// store-defined.
func (p *Provider) CompanySearch(ctx context.Context, tenant string) ([]string, error) {
	return p.searchKeys(ctx, companyDesc, query.Eq("tenant", tenant))
}

// CompanyExists reports whether the company exists within the tenant.
func (p *Provider) CompanyExists(ctx context.Context, tenant, name string) (bool, error) {
	return p.keyExists(ctx, companyDesc, companyFilter(tenant, name), companyEntity, companyKey(tenant, name))
}

// CompanyLookup returns the company.
func (p *Provider) CompanyLookup(ctx context.Context, tenant, name string) (*Company, error) {
	row, err := p.readOne(ctx, companyDesc, companyFilter(tenant, name),
		companyProjection, companyEntity, companyKey(tenant, name))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: companyEntity, Key: companyKey(tenant, name)}
	}
	return &Company{
		Tenant:      row.String("tenant"),
		Name:        row.String("name"),
		DisplayName: row.String("display_name"),
		Status:      row.String("status"),
		Audit:       auditFrom(row),
	}, nil
}

// CompanyCreate creates the company. The tenant must exist and the
// (tenant, name) pair must not.
func (p *Provider) CompanyCreate(ctx context.Context, c *Company) (*Company, error) {
	ok, err := p.TenantExists(ctx, c.Tenant)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fault.NotFoundError{Entity: tenantEntity, Key: c.Tenant}
	}
	exists, err := p.CompanyExists(ctx, c.Tenant, c.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: companyEntity, Key: companyKey(c.Tenant, c.Name)}
	}

	gen, err := p.eng.Insert(ctx, companyDesc, storage.Payload{}.
		Set("tenant", c.Tenant).
		Set("name", c.Name).
		Set("displayName", c.DisplayName).
		Set("status", c.Status),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "company create", err)
	}
	if err := p.commit(ctx, "company create"); err != nil {
		return nil, err
	}
	c.Audit = auditFrom(gen)
	return c, nil
}

// CompanyModify rewrites the company row under its key. The company must
// exist.
func (p *Provider) CompanyModify(ctx context.Context, c *Company) (*Company, error) {
	exists, err := p.CompanyExists(ctx, c.Tenant, c.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: companyEntity, Key: companyKey(c.Tenant, c.Name)}
	}

	gen, err := p.eng.Update(ctx, companyDesc, companyFilter(c.Tenant, c.Name), storage.Payload{}.
		Set("displayName", c.DisplayName).
		Set("status", c.Status),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "company modify", err)
	}
	if err := p.commit(ctx, "company modify"); err != nil {
		return nil, err
	}
	c.Audit = auditFrom(gen)
	return c, nil
}

// CompanyDelete removes the company row. The company must exist.
func (p *Provider) CompanyDelete(ctx context.Context, tenant, name string) error {
	exists, err := p.CompanyExists(ctx, tenant, name)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: companyEntity, Key: companyKey(tenant, name)}
	}

	if _, err := p.eng.Delete(ctx, companyDesc, companyFilter(tenant, name)); err != nil {
		return p.fail(ctx, "company delete", err)
	}
	return p.commit(ctx, "company delete")
}
