package provider

import "apigw-sim/internal/query"

// The descriptors below are the de facto schema contract: relation and
// column names must stay stable for compatibility with an existing store.
// Attribute names are the logical (payload) names; columns are physical.

var tenantDesc = query.Descriptor{
	Relation:  "tenants",
	KeyColumn: "name",
	Attributes: []query.Attribute{
		{Name: "name", Column: "name"},
		{Name: "type", Column: "type"},
		{Name: "displayName", Column: "display_name"},
	},
}

var tenantEnvironmentDesc = query.Descriptor{
	Relation:  "tenant_environments",
	KeyColumn: "tenant",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "name", Column: "name"},
	},
}

var tenantPropertyDesc = query.Descriptor{
	Relation:  "tenant_properties",
	KeyColumn: "tenant",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "name", Column: "name"},
		{Name: "value", Column: "value"},
	},
}

var accountDesc = query.Descriptor{
	Relation:  "users",
	KeyColumn: "email",
	Attributes: []query.Attribute{
		{Name: "email", Column: "email"},
		{Name: "username", Column: "username"},
		{Name: "firstName", Column: "first_name"},
		{Name: "lastName", Column: "last_name"},
		{Name: "password", Column: "password"},
	},
}

var roleDesc = query.Descriptor{
	Relation:  "roles",
	KeyColumn: "name",
	Attributes: []query.Attribute{
		{Name: "name", Column: "name"},
	},
}

var roleMembershipDesc = query.Descriptor{
	Relation:  "role_memberships",
	KeyColumn: "role",
	Attributes: []query.Attribute{
		{Name: "role", Column: "role"},
		{Name: "email", Column: "email"},
	},
}

var tenantRoleDesc = query.Descriptor{
	Relation:  "tenant_roles",
	KeyColumn: "name",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "name", Column: "name"},
	},
}

var tenantRoleMembershipDesc = query.Descriptor{
	Relation:  "tenant_role_memberships",
	KeyColumn: "role",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "role", Column: "role"},
		{Name: "email", Column: "email"},
	},
}

var developerDesc = query.Descriptor{
	Relation:  "developers",
	KeyColumn: "email",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "email", Column: "email"},
		{Name: "username", Column: "username"},
		{Name: "firstName", Column: "first_name"},
		{Name: "lastName", Column: "last_name"},
		{Name: "status", Column: "status"},
	},
}

var developerAppDesc = query.Descriptor{
	Relation:  "developer_apps",
	KeyColumn: "email",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "email", Column: "email"},
		{Name: "appId", Column: "app_id"},
	},
}

var developerCompanyDesc = query.Descriptor{
	Relation:  "developer_companies",
	KeyColumn: "email",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "email", Column: "email"},
		{Name: "company", Column: "company"},
	},
}

var companyDesc = query.Descriptor{
	Relation:  "companies",
	KeyColumn: "name",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "name", Column: "name"},
		{Name: "displayName", Column: "display_name"},
		{Name: "status", Column: "status"},
	},
}

var productDesc = query.Descriptor{
	Relation:  "api_products",
	KeyColumn: "name",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "name", Column: "name"},
		{Name: "displayName", Column: "display_name"},
		{Name: "description", Column: "description"},
		{Name: "approvalType", Column: "approval_type"},
		{Name: "resources", Column: "resources"},
		{Name: "proxies", Column: "proxies"},
		{Name: "scopes", Column: "scopes"},
		{Name: "environments", Column: "environments"},
		{Name: "quota", Column: "quota"},
		{Name: "quotaInterval", Column: "quota_interval"},
		{Name: "quotaTimeUnit", Column: "quota_time_unit"},
	},
}

var applicationDesc = query.Descriptor{
	Relation:  "apps",
	KeyColumn: "app_id",
	Attributes: []query.Attribute{
		{Name: "tenant", Column: "tenant"},
		{Name: "appId", Column: "app_id"},
		{Name: "name", Column: "name"},
		{Name: "displayName", Column: "display_name"},
		{Name: "status", Column: "status"},
		{Name: "developer", Column: "developer"},
	},
}
