// Package cli defines the cobra command tree for realty.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/evcraddock/realty/internal/client"
	"github.com/evcraddock/realty/internal/config"
	"github.com/evcraddock/realty/internal/db"
)

var (
	flagFormat string
	flagConfig string
	flagDB     string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "realty",
		Short:         "Real-estate listing server and client",
		Long:          "Run the realty listing API, manage its database, and browse listings, inquiries and messages from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "server config file (YAML)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "database DSN: SQLite path or postgres:// URL (default: ~/.realty/realty.db)")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newListCmd(),
		newShowCmd(),
		newSetStatusCmd(),
		newRemoveCmd(),
		newInboxCmd(),
		newInquiriesCmd(),
		newVersionCmd(),
	)

	return root
}

// serverConfig reads the server configuration, applying the --db flag.
func serverConfig() (config.Config, error) {
	cfg, err := config.Read(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagDB != "" {
		cfg.Database.DSN = flagDB
		cfg.Database.Driver = db.DriverSQLite
		if strings.HasPrefix(flagDB, "postgres://") || strings.HasPrefix(flagDB, "postgresql://") {
			cfg.Database.Driver = db.DriverPostgres
		}
	}
	return cfg, nil
}

// openDB opens and migrates the configured database.
func openDB() (*gorm.DB, error) {
	cfg, err := serverConfig()
	if err != nil {
		return nil, err
	}
	return db.OpenConfig(cfg.Database)
}

// newAPIClient creates an HTTP client for the realty API.
func newAPIClient() *client.Client {
	return client.New(getServerURL(), getToken())
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *gorm.DB) {
	if err := db.Close(database); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
