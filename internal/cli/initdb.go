// Package cli holds the cobra subcommands of the simulator backend.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"apigw-sim/internal/config"
	"apigw-sim/internal/storage"
)

// InitDBCommand creates the init-db command, which loads the schema into
// the configured PostgreSQL database.
func InitDBCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the backend schema in the configured database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			schema, err := os.ReadFile(schemaPath)
			if err != nil {
				return fmt.Errorf("failed to read schema file: %w", err)
			}

			store, err := storage.OpenPostgres(cfg.DSN())
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.DB().ExecContext(cmd.Context(), string(schema)); err != nil {
				return fmt.Errorf("failed to execute schema: %w", err)
			}
			fmt.Println("Schema loaded.")
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "sql/schema.sql", "Path to the schema file")
	return cmd
}
