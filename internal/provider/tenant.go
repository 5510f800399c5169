package provider

import (
	"context"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const tenantEntity = "tenant"

var tenantProjection = query.Columns(
	"name", "type", "display_name",
	"created_at", "created_by", "updated_at", "updated_by",
)

// TenantSearch lists the names of all tenants. Order is store-defined.
func (p *Provider) TenantSearch(ctx context.Context) ([]string, error) {
	return p.searchKeys(ctx, tenantDesc, query.All())
}

// TenantExists reports whether a tenant with the given name exists.
func (p *Provider) TenantExists(ctx context.Context, name string) (bool, error) {
	return p.keyExists(ctx, tenantDesc, query.Eq("name", name), tenantEntity, name)
}

// TenantLookup returns the tenant with its environments and properties
// attached. The lookup is not complete until both secondary reads finish;
// a failure in either aborts the whole lookup.
func (p *Provider) TenantLookup(ctx context.Context, name string) (*Tenant, error) {
	row, err := p.readOne(ctx, tenantDesc, query.Eq("name", name), tenantProjection, tenantEntity, name)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: tenantEntity, Key: name}
	}

	t := &Tenant{
		Name:         row.String("name"),
		Type:         row.String("type"),
		DisplayName:  row.String("display_name"),
		Environments: []string{},
		Properties:   []Property{},
		Audit:        auditFrom(row),
	}

	envs, err := p.eng.Read(ctx, tenantEnvironmentDesc, query.Eq("tenant", name), query.Columns("name"))
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	for _, env := range envs {
		t.Environments = append(t.Environments, env.String("name"))
	}

	props, err := p.eng.Read(ctx, tenantPropertyDesc, query.Eq("tenant", name), query.Columns("name", "value"))
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	for _, prop := range props {
		t.Properties = append(t.Properties, Property{
			Name:  prop.String("name"),
			Value: prop.String("value"),
		})
	}
	return t, nil
}

// TenantCreate creates the tenant and its environment and property child
// rows in one transaction. The name must not already exist.
func (p *Provider) TenantCreate(ctx context.Context, t *Tenant) (*Tenant, error) {
	exists, err := p.TenantExists(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: tenantEntity, Key: t.Name}
	}

	gen, err := p.eng.Insert(ctx, tenantDesc, storage.Payload{}.
		Set("name", t.Name).
		Set("type", t.Type).
		Set("displayName", t.DisplayName),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "tenant create", err)
	}
	if err := p.writeTenantChildren(ctx, t); err != nil {
		return nil, p.fail(ctx, "tenant create", err)
	}
	if err := p.commit(ctx, "tenant create"); err != nil {
		return nil, err
	}

	t.Audit = auditFrom(gen)
	if t.Environments == nil {
		t.Environments = []string{}
	}
	if t.Properties == nil {
		t.Properties = []Property{}
	}
	return t, nil
}

// TenantModify rewrites the tenant row and replaces its environment and
// property child rows wholesale. The name must exist.
func (p *Provider) TenantModify(ctx context.Context, t *Tenant) (*Tenant, error) {
	exists, err := p.TenantExists(ctx, t.Name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: tenantEntity, Key: t.Name}
	}

	gen, err := p.eng.Update(ctx, tenantDesc, query.Eq("name", t.Name), storage.Payload{}.
		Set("type", t.Type).
		Set("displayName", t.DisplayName),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "tenant modify", err)
	}
	if _, err := p.eng.Delete(ctx, tenantEnvironmentDesc, query.Eq("tenant", t.Name)); err != nil {
		return nil, p.fail(ctx, "tenant modify", err)
	}
	if _, err := p.eng.Delete(ctx, tenantPropertyDesc, query.Eq("tenant", t.Name)); err != nil {
		return nil, p.fail(ctx, "tenant modify", err)
	}
	if err := p.writeTenantChildren(ctx, t); err != nil {
		return nil, p.fail(ctx, "tenant modify", err)
	}
	if err := p.commit(ctx, "tenant modify"); err != nil {
		return nil, err
	}

	t.Audit = auditFrom(gen)
	if t.Environments == nil {
		t.Environments = []string{}
	}
	if t.Properties == nil {
		t.Properties = []Property{}
	}
	return t, nil
}

// TenantDelete removes the tenant row and its environment and property
// child rows. Independent entities the tenant owns (roles, companies,
// products, applications, developers) are left alone; the caller is
// responsible for those referential invariants.
func (p *Provider) TenantDelete(ctx context.Context, name string) error {
	exists, err := p.TenantExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: tenantEntity, Key: name}
	}

	if _, err := p.eng.Delete(ctx, tenantEnvironmentDesc, query.Eq("tenant", name)); err != nil {
		return p.fail(ctx, "tenant delete", err)
	}
	if _, err := p.eng.Delete(ctx, tenantPropertyDesc, query.Eq("tenant", name)); err != nil {
		return p.fail(ctx, "tenant delete", err)
	}
	if _, err := p.eng.Delete(ctx, tenantDesc, query.Eq("name", name)); err != nil {
		return p.fail(ctx, "tenant delete", err)
	}
	return p.commit(ctx, "tenant delete")
}

func (p *Provider) writeTenantChildren(ctx context.Context, t *Tenant) error {
	for _, env := range t.Environments {
		_, err := p.eng.Insert(ctx, tenantEnvironmentDesc, storage.Payload{}.
			Set("tenant", t.Name).
			Set("name", env))
		if err != nil {
			return err
		}
	}
	for _, prop := range t.Properties {
		_, err := p.eng.Insert(ctx, tenantPropertyDesc, storage.Payload{}.
			Set("tenant", t.Name).
			Set("name", prop.Name).
			Set("value", prop.Value))
		if err != nil {
			return err
		}
	}
	return nil
}
