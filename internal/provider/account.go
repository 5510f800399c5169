package provider

import (
	"context"

	"apigw-sim/internal/fault"
	"apigw-sim/internal/query"
	"apigw-sim/internal/storage"
)

const accountEntity = "account"

var accountProjection = query.Columns(
	"email", "username", "first_name", "last_name", "password",
	"created_at", "created_by", "updated_at", "updated_by",
)

// AccountSearch lists the emails of all accounts. Order is store-defined.
func (p *Provider) AccountSearch(ctx context.Context) ([]string, error) {
	return p.searchKeys(ctx, accountDesc, query.All())
}

// AccountExists reports whether an account with the given email exists.
func (p *Provider) AccountExists(ctx context.Context, email string) (bool, error) {
	return p.keyExists(ctx, accountDesc, query.Eq("email", email), accountEntity, email)
}

// AccountLookup returns the account for the email.
func (p *Provider) AccountLookup(ctx context.Context, email string) (*Account, error) {
	row, err := p.readOne(ctx, accountDesc, query.Eq("email", email), accountProjection, accountEntity, email)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, &fault.NotFoundError{Entity: accountEntity, Key: email}
	}
	return accountFromTuple(row), nil
}

// AccountCreate creates the account. The email must not already exist.
func (p *Provider) AccountCreate(ctx context.Context, a *Account) (*Account, error) {
	exists, err := p.AccountExists(ctx, a.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, &fault.ConflictError{Entity: accountEntity, Key: a.Email}
	}

	gen, err := p.eng.Insert(ctx, accountDesc, storage.Payload{}.
		Set("email", a.Email).
		Set("username", a.Username).
		Set("firstName", a.FirstName).
		Set("lastName", a.LastName).
		Set("password", a.Password),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "account create", err)
	}
	if err := p.commit(ctx, "account create"); err != nil {
		return nil, err
	}
	a.Audit = auditFrom(gen)
	return a, nil
}

// AccountModify rewrites the account row under its email. The email must
// exist.
func (p *Provider) AccountModify(ctx context.Context, a *Account) (*Account, error) {
	exists, err := p.AccountExists(ctx, a.Email)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &fault.NotFoundError{Entity: accountEntity, Key: a.Email}
	}

	gen, err := p.eng.Update(ctx, accountDesc, query.Eq("email", a.Email), storage.Payload{}.
		Set("username", a.Username).
		Set("firstName", a.FirstName).
		Set("lastName", a.LastName).
		Set("password", a.Password),
		auditColumns...)
	if err != nil {
		return nil, p.fail(ctx, "account modify", err)
	}
	if err := p.commit(ctx, "account modify"); err != nil {
		return nil, err
	}
	a.Audit = auditFrom(gen)
	return a, nil
}

// AccountDelete removes the account row. Membership rows referencing it are
// the caller's responsibility.
func (p *Provider) AccountDelete(ctx context.Context, email string) error {
	exists, err := p.AccountExists(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return &fault.NotFoundError{Entity: accountEntity, Key: email}
	}

	if _, err := p.eng.Delete(ctx, accountDesc, query.Eq("email", email)); err != nil {
		return p.fail(ctx, "account delete", err)
	}
	return p.commit(ctx, "account delete")
}

func accountFromTuple(row storage.Tuple) *Account {
	return &Account{
		Email:     row.String("email"),
		Username:  row.String("username"),
		FirstName: row.String("first_name"),
		LastName:  row.String("last_name"),
		Password:  row.String("password"),
		Audit:     auditFrom(row),
	}
}
