package provider

import (
	"context"

	"github.com/lib/pq"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const productEntity = "product"

var productProjection = query.Columns(
	"tenant", "name", "display_name", "description", "approval_type",
	"resources", "proxies", "scopes", "environments",
	"quota", "quota_interval", "quota_time_unit",
	"created_at", "created_by", "updated_at", "updated_by",
)

func productFilter(tenant, name string) query.Filter {
	return query.And(query.Eq("tenant", tenant), query.Eq("name", name))
}

func productKey(tenant, name string) string {
	return tenant + "/" + name
}

// ProductSearch lists the names of a tenant's API products. Order is
// store-defined.
func (p *Provider) ProductSearch(ctx context.Context, tenant string) ([]string, error) {
	return p.searchKeys(ctx, productDesc, query.Eq("tenant", tenant))
}

// ProductExists reports whether the product exists within the tenant.
func (p *Provider) ProductExists(ctx context.Context, tenant, name string) (bool, error) {
	return p.keyExists(ctx, productDesc, productFilter(tenant, name), productEntity, productKey(tenant, name))
}

// ProductLookup returns the API product.
func (p *Provider) ProductLookup(ctx context.Context, tenant, name string) (*Product, error) {
	row, err := p.readOne(ctx, productDesc, productFilter(tenant, name),
		productProjection, productEntity, productKey(tenant, name))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: productEntity, Key: productKey(tenant, name)}
	}
	return productFromTuple(row), nil
}

// ProductCreate creates the API product. The tenant must exist and the
// (tenant, name) pair must not.
func (p *Provider) ProductCreate(ctx context.Context, prod *Product) (*Product, error) {
	ok, err := p.TenantExists(ctx, prod.Tenant)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fault.NotFoundError{Entity: tenantEntity, Key: prod.Tenant}
	}
	exists, err := p.ProductExists(ctx, prod.Tenant, prod.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: productEntity, Key: productKey(prod.Tenant, prod.Name)}
	}

	// nil list fields would bind as SQL NULL; the columns are NOT NULL.
	normalizeProductLists(prod)
	gen, err := p.eng.Insert(ctx, productDesc, productPayload(prod).
		Set("tenant", prod.Tenant).
		Set("name", prod.Name),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "product create", err)
	}
	if err := p.commit(ctx, "product create"); err != nil {
		return nil, err
	}
	prod.Audit = auditFrom(gen)
	return prod, nil
}

// ProductModify rewrites the product row under its key. The product must
// exist.
func (p *Provider) ProductModify(ctx context.Context, prod *Product) (*Product, error) {
	exists, err := p.ProductExists(ctx, prod.Tenant, prod.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: productEntity, Key: productKey(prod.Tenant, prod.Name)}
	}

	normalizeProductLists(prod)
	gen, err := p.eng.Update(ctx, productDesc, productFilter(prod.Tenant, prod.Name),
		productPayload(prod), auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "product modify", err)
	}
	if err := p.commit(ctx, "product modify"); err != nil {
		return nil, err
	}
	prod.Audit = auditFrom(gen)
	return prod, nil
}

// ProductDelete removes the product row. The product must exist.
func (p *Provider) ProductDelete(ctx context.Context, tenant, name string) error {
	exists, err := p.ProductExists(ctx, tenant, name)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: productEntity, Key: productKey(tenant, name)}
	}

	if _, err := p.eng.Delete(ctx, productDesc, productFilter(tenant, name)); err != nil {
		return p.fail(ctx, "product delete", err)
	}
	return p.commit(ctx, "product delete")
}

// productPayload carries the mutable product attributes. List columns go
// through pq.Array so the Postgres store can bind them as text[].
func productPayload(prod *Product) storage.Payload {
	return storage.Payload{}.
		Set("displayName", prod.DisplayName).
		Set("description", prod.Description).
		Set("approvalType", prod.ApprovalType).
		Set("resources", pq.Array(prod.Resources)).
		Set("proxies", pq.Array(prod.Proxies)).
		Set("scopes", pq.Array(prod.Scopes)).
		Set("environments", pq.Array(prod.Environments)).
		Set("quota", prod.Quota).
		Set("quotaInterval", prod.QuotaInterval).
		Set("quotaTimeUnit", prod.QuotaTimeUnit)
}

func productFromTuple(row storage.Tuple) *Product {
	resources, _ := row.Get("resources")
	proxies, _ := row.Get("proxies")
	scopes, _ := row.Get("scopes")
	environments, _ := row.Get("environments")
	return &Product{
		Tenant:        row.String("tenant"),
		Name:          row.String("name"),
		DisplayName:   row.String("display_name"),
		Description:   row.String("description"),
		ApprovalType:  row.String("approval_type"),
		Resources:     stringList(resources),
		Proxies:       stringList(proxies),
		Scopes:        stringList(scopes),
		Environments:  stringList(environments),
		Quota:         row.String("quota"),
		QuotaInterval: row.String("quota_interval"),
		QuotaTimeUnit: row.String("quota_time_unit"),
		Audit:         auditFrom(row),
	}
}

func normalizeProductLists(prod *Product) {
	if prod.Resources == nil {
		prod.Resources = []string{}
	}
	if prod.Proxies == nil {
		prod.Proxies = []string{}
	}
	if prod.Scopes == nil {
		prod.Scopes = []string{}
	}
	if prod.Environments == nil {
		prod.Environments = []string{}
	}
}
