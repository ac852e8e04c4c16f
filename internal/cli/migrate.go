package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Open the configured database and bring its schema up to date.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	}
}

func runMigrate() error {
	cfg, err := serverConfig()
	if err != nil {
		return err
	}

	database, err := db.OpenConfig(cfg.Database)
	if err != nil {
		return err
	}
	defer closeDB(database)

	if isJSON() {
		return printJSON(map[string]any{
			"driver":   cfg.Database.Driver,
			"migrated": true,
		})
	}

	fmt.Printf("✓ %s database is up to date.\n", cfg.Database.Driver)
	return nil
}
