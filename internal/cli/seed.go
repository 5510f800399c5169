package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"apigw-sim/internal/config"
	"apigw-sim/internal/fault"
	"apigw-sim/internal/logger"
	"apigw-sim/internal/provider"
	"apigw-sim/internal/storage"
)

// SeedCommand creates the seed command, which provisions a small demo data
// set through the provider so every write goes through the normal
// precondition and transaction path. Re-running it is harmless: existing
// keys are skipped.
func SeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Provision a demo tenant, accounts and roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.LogLevel)
			log := logger.New()

			store, err := storage.Open(cfg)
			if err != nil {
				return err
			}

			p, err := provider.Open(cmd.Context(), store, log)
			if err != nil {
				return err
			}
			defer p.Close()

			if err := seed(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Println("Demo data seeded.")
			return nil
		},
	}
}

func seed(ctx context.Context, p *provider.Provider) error {
	_, err := p.TenantCreate(ctx, &provider.Tenant{
		Name:         "demo",
		Type:         "trial",
		DisplayName:  "Demo Organization",
		Environments: []string{"test", "prod"},
		Properties:   []provider.Property{{Name: "features.isDemo", Value: "true"}},
	})
	if err != nil && !fault.IsConflict(err) {
		return err
	}

	_, err = p.AccountCreate(ctx, &provider.Account{
		Email:     "admin@demo.example",
		Username:  "demo-admin",
		FirstName: "Demo",
		LastName:  "Admin",
		Password:  "secret",
	})
	if err != nil && !fault.IsConflict(err) {
		return err
	}

	if _, err := p.RoleCreate(ctx, "", "sysadmin"); err != nil && !fault.IsConflict(err) {
		return err
	}
	if _, err := p.RoleAssign(ctx, "", "sysadmin", "admin@demo.example"); err != nil && !fault.IsConflict(err) {
		return err
	}

	_, err = p.DeveloperCreate(ctx, &provider.Developer{
		Tenant:    "demo",
		Email:     "dev@demo.example",
		Username:  "demo-dev",
		FirstName: "Demo",
		LastName:  "Developer",
		Status:    "active",
	})
	if err != nil && !fault.IsConflict(err) {
		return err
	}

	_, err = p.ProductCreate(ctx, &provider.Product{
		Tenant:       "demo",
		Name:         "weather",
		DisplayName:  "Weather API",
		ApprovalType: "auto",
		Resources:    []string{"/forecast", "/current"},
		Environments: []string{"test", "prod"},
	})
	if err != nil && !fault.IsConflict(err) {
		return err
	}
	return nil
}
