package provider

import (
	"context"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const (
	roleEntity       = "role"
	membershipEntity = "membership"
)

// Role operations address the global role tables when tenant is empty and
// the tenant-scoped tables otherwise. The filter shapes differ (single-key
// versus composite-key conjunctions) but the flow is identical.

func roleTables(tenant string) (roles, memberships query.Descriptor) {
	if tenant == "" {
		return roleDesc, roleMembershipDesc
	}
	return tenantRoleDesc, tenantRoleMembershipDesc
}

func roleFilter(tenant, name string) query.Filter {
	if tenant == "" {
		return query.Eq("name", name)
	}
	return query.And(query.Eq("tenant", tenant), query.Eq("name", name))
}

func membershipFilter(tenant, role, email string) query.Filter {
	if tenant == "" {
		return query.And(query.Eq("role", role), query.Eq("email", email))
	}
	return query.And(
		query.And(query.Eq("tenant", tenant), query.Eq("role", role)),
		query.Eq("email", email))
}

func roleKey(tenant, name string) string {
	if tenant == "" {
		return name
	}
	return tenant + "/" + name
}

// RoleSearch lists role names, globally or within a tenant. Order is
// store-defined.
func (p *Provider) RoleSearch(ctx context.Context, tenant string) ([]string, error) {
	roles, _ := roleTables(tenant)
	f := query.All()
	if tenant != "" {
		f = query.Eq("tenant", tenant)
	}
	return p.searchKeys(ctx, roles, f)
}

// RoleExists reports whether the role exists in the addressed scope.
func (p *Provider) RoleExists(ctx context.Context, tenant, name string) (bool, error) {
	roles, _ := roleTables(tenant)
	return p.keyExists(ctx, roles, roleFilter(tenant, name), roleEntity, roleKey(tenant, name))
}

// RoleLookup returns the role in the addressed scope.
func (p *Provider) RoleLookup(ctx context.Context, tenant, name string) (*Role, error) {
	roles, _ := roleTables(tenant)
	proj := query.Columns("name", "created_at", "created_by", "updated_at", "updated_by")
	row, err := p.readOne(ctx, roles, roleFilter(tenant, name), proj, roleEntity, roleKey(tenant, name))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: roleEntity, Key: roleKey(tenant, name)}
	}
	return &Role{
		Tenant: tenant,
		Name:   row.String("name"),
		Audit:  auditFrom(row),
	}, nil
}

// RoleCreate creates the role in the addressed scope. The name must not
// already exist there; for tenant-scoped roles the tenant must exist.
func (p *Provider) RoleCreate(ctx context.Context, tenant, name string) (*Role, error) {
	if tenant != "" {
		ok, err := p.TenantExists(ctx, tenant)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &fault.NotFoundError{Entity: tenantEntity, Key: tenant}
		}
	}
	exists, err := p.RoleExists(ctx, tenant, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: roleEntity, Key: roleKey(tenant, name)}
	}

	roles, _ := roleTables(tenant)
	payload := storage.Payload{}
	if tenant != "" {
		payload = payload.Set("tenant", tenant)
	}
	payload = payload.Set("name", name)

	gen, err := p.eng.Insert(ctx, roles, payload, auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "role create", err)
	}
	if err := p.commit(ctx, "role create"); err != nil {
		return nil, err
	}
	return &Role{Tenant: tenant, Name: name, Audit: auditFrom(gen)}, nil
}

// RoleDelete removes the role and its membership rows from the addressed
// scope. The role must exist.
func (p *Provider) RoleDelete(ctx context.Context, tenant, name string) error {
	exists, err := p.RoleExists(ctx, tenant, name)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: roleEntity, Key: roleKey(tenant, name)}
	}

	roles, memberships := roleTables(tenant)
	memberFilter := query.Filter(query.Eq("role", name))
	if tenant != "" {
		memberFilter = query.And(query.Eq("tenant", tenant), query.Eq("role", name))
	}
	if _, err := p.eng.Delete(ctx, memberships, memberFilter); err != nil {
		return p.fail(ctx, "role delete", err)
	}
	if _, err := p.eng.Delete(ctx, roles, roleFilter(tenant, name)); err != nil {
		return p.fail(ctx, "role delete", err)
	}
	return p.commit(ctx, "role delete")
}

// RoleAssign grants the role to the account. The role and the account must
// exist and the pair must not already be assigned. The returned Account
// carries the account's complete current membership set in the addressed
// scope, not just the one assigned here.
func (p *Provider) RoleAssign(ctx context.Context, tenant, role, email string) (*Account, error) {
	exists, err := p.RoleExists(ctx, tenant, role)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: roleEntity, Key: roleKey(tenant, role)}
	}

	account, err := p.AccountLookup(ctx, email)
	if err != nil {
		return nil, err
	}

	_, memberships := roleTables(tenant)
	assigned, err := p.keyExists(ctx, memberships, membershipFilter(tenant, role, email),
		membershipEntity, roleKey(tenant, role)+"/"+email)
	if err != nil {
		return nil, err
	}
	if assigned {
		return nil, &fault.ConflictError{Entity: membershipEntity, Key: roleKey(tenant, role) + "/" + email}
	}

	payload := storage.Payload{}
	if tenant != "" {
		payload = payload.Set("tenant", tenant)
	}
	payload = payload.Set("role", role).Set("email", email)

	if _, err := p.eng.Insert(ctx, memberships, payload, auditColumns...); err != nil {
		return nil, p.fail(ctx, "role assign", err)
	}
	if err := p.commit(ctx, "role assign"); err != nil {
		return nil, err
	}

	roles, err := p.accountRoles(ctx, tenant, email)
	if err != nil {
		return nil, err
	}
	account.Roles = roles
	return account, nil
}

// RoleRevoke removes the role from the account. The role must exist and
// the pair must currently be assigned.
func (p *Provider) RoleRevoke(ctx context.Context, tenant, role, email string) error {
	exists, err := p.RoleExists(ctx, tenant, role)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: roleEntity, Key: roleKey(tenant, role)}
	}

	_, memberships := roleTables(tenant)
	assigned, err := p.keyExists(ctx, memberships, membershipFilter(tenant, role, email),
		membershipEntity, roleKey(tenant, role)+"/"+email)
	if err != nil {
		return err
	}
	if !assigned {
		return &fault.NotFoundError{Entity: membershipEntity, Key: roleKey(tenant, role) + "/" + email}
	}

	if _, err := p.eng.Delete(ctx, memberships, membershipFilter(tenant, role, email)); err != nil {
		return p.fail(ctx, "role revoke", err)
	}
	return p.commit(ctx, "role revoke")
}

// RoleMembers lists the emails holding the role. The role must exist.
// Order is store-defined.
func (p *Provider) RoleMembers(ctx context.Context, tenant, role string) ([]string, error) {
	exists, err := p.RoleExists(ctx, tenant, role)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: roleEntity, Key: roleKey(tenant, role)}
	}

	_, memberships := roleTables(tenant)
	f := query.Filter(query.Eq("role", role))
	if tenant != "" {
		f = query.And(query.Eq("tenant", tenant), query.Eq("role", role))
	}
	rows, err := p.eng.Read(ctx, memberships, f, query.Columns("email"))
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	emails := make([]string, 0, len(rows))
	for _, r := range rows {
		emails = append(emails, r.String("email"))
	}
	return emails, nil
}

// accountRoles reads the account's full membership set in the scope.
func (p *Provider) accountRoles(ctx context.Context, tenant, email string) ([]string, error) {
	_, memberships := roleTables(tenant)
	f := query.Filter(query.Eq("email", email))
	if tenant != "" {
		f = query.And(query.Eq("tenant", tenant), query.Eq("email", email))
	}
	rows, err := p.eng.Read(ctx, memberships, f, query.Columns("role"))
	if err != nil {
		return nil, &fault.StoreError{Op: "read", Err: err}
	}
	roles := make([]string, 0, len(rows))
	for _, r := range rows {
		roles = append(roles, r.String("role"))
	}
	return roles, nil
}
