package provider

import "time"

// Audit carries the server-stamped bookkeeping columns. The store populates
// them on every write; the engine reads them back into the domain object.
type Audit struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

// Tenant is the top-level organizational scope. Environments and Properties
// live in their own relations and are assembled onto the object on lookup.
type Tenant struct {
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	DisplayName  string     `json:"displayName"`
	Environments []string   `json:"environments"`
	Properties   []Property `json:"properties"`
	Audit        Audit      `json:"audit"`
}

// Property is one name/value pair attached to a tenant.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Account is an end-user identity keyed by email, independent of tenants.
// Roles holds the account's role names in the scope last addressed by a
// membership operation.
type Account struct {
	Email     string   `json:"email"`
	Username  string   `json:"username"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Password  string   `json:"password"`
	Roles     []string `json:"roles"`
	Audit     Audit    `json:"audit"`
}

// Role is a named permission group, tenant-scoped when Tenant is non-empty.
type Role struct {
	Tenant string `json:"tenant,omitempty"`
	Name   string `json:"name"`
	Audit  Audit  `json:"audit"`
}

// Developer is the tenant-scoped projection of an account. Applications
// holds the ids of granted applications; Companies is attached for shape
// compatibility but is always empty.
type Developer struct {
	Tenant       string   `json:"tenant"`
	Email        string   `json:"email"`
	Username     string   `json:"username"`
	FirstName    string   `json:"firstName"`
	LastName     string   `json:"lastName"`
	Status       string   `json:"status"`
	Applications []string `json:"applications"`
	Companies    []string `json:"companies"`
	Audit        Audit    `json:"audit"`
}

// Company is a tenant-scoped grouping of developers.
type Company struct {
	Tenant      string `json:"tenant"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
	Audit       Audit  `json:"audit"`
}

// Product is an API product owned by a tenant.
type Product struct {
	Tenant        string   `json:"tenant"`
	Name          string   `json:"name"`
	DisplayName   string   `json:"displayName"`
	Description   string   `json:"description"`
	ApprovalType  string   `json:"approvalType"`
	Resources     []string `json:"resources"`
	Proxies       []string `json:"proxies"`
	Scopes        []string `json:"scopes"`
	Environments  []string `json:"environments"`
	Quota         string   `json:"quota"`
	QuotaInterval string   `json:"quotaInterval"`
	QuotaTimeUnit string   `json:"quotaTimeUnit"`
	Audit         Audit    `json:"audit"`
}

// Application is a tenant-scoped app, keyed by id rather than name. When
// DeveloperEmail is set on create, the owning developer is granted the app.
type Application struct {
	Tenant         string `json:"tenant"`
	ID             string `json:"id"`
	Name           string `json:"name"`
	DisplayName    string `json:"displayName"`
	Status         string `json:"status"`
	DeveloperEmail string `json:"developerEmail,omitempty"`
	Audit          Audit  `json:"audit"`
}
