package main

import (
	"os"

	"github.com/spf13/cobra"

	"apigw-sim/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "apigw-sim",
		Short: "Persistence backend for the API-gateway management simulator",
		Long: `apigw-sim is the persistence tier of a multi-tenant API-gateway
management simulator: tenants, accounts, roles and memberships, developers,
companies, API products and applications, stored in PostgreSQL or in memory.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		cli.InitDBCommand(),
		cli.SeedCommand(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
