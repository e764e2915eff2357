package main

import (
	"fmt"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver migrations.NewManager opens
	"github.com/spf13/cobra"

	"github.com/kspt-johs/disir-go/internal/appconfig"
	"github.com/kspt-johs/disir-go/registry/migrations"
)

// newRegistryCommand builds the `registry` subtree. Unlike mold/config,
// its migrate subcommands need cfg.Registry, which depends on the
// --config flag cobra only parses once Execute() resolves the actual
// command being run — so each leaf here loads the config and opens its
// own *migrations.Manager inside RunE instead of at tree-build time.
func newRegistryCommand(configPath *string) *cobra.Command {
	root := &cobra.Command{
		Use:   "registry",
		Short: "Manage the registry's storage backend",
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres registry schema (goose migrations)",
	}

	var toVersion string
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration, or down to --to-version",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, closeManager, err := openMigrationManager(*configPath)
			if err != nil {
				return err
			}
			defer closeManager()
			if toVersion == "" {
				return manager.Reset(cmd.Context())
			}
			v, err := strconv.ParseInt(toVersion, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid --to-version %q: %w", toVersion, err)
			}
			return manager.DownTo(cmd.Context(), v)
		},
	}
	resetCmd.Flags().StringVar(&toVersion, "to-version", "", "roll back down to (not including) this version")

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, closeManager, err := openMigrationManager(*configPath)
				if err != nil {
					return err
				}
				defer closeManager()
				return manager.Up(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, closeManager, err := openMigrationManager(*configPath)
				if err != nil {
					return err
				}
				defer closeManager()
				return manager.Down(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied/pending migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, closeManager, err := openMigrationManager(*configPath)
				if err != nil {
					return err
				}
				defer closeManager()
				return manager.Status(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				manager, closeManager, err := openMigrationManager(*configPath)
				if err != nil {
					return err
				}
				defer closeManager()
				v, err := manager.Version(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(v)
				return nil
			},
		},
		resetCmd,
	)

	root.AddCommand(migrateCmd)
	return root
}

// openMigrationManager loads the disir-server config, rejects any
// backend other than postgres (sqlite has no schema to migrate), and
// opens a migrations.Manager against it. The returned func closes the
// manager's underlying *sql.DB.
func openMigrationManager(configPath string) (*migrations.Manager, func(), error) {
	cfg, err := appconfig.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Registry.Backend != "postgres" {
		return nil, nil, fmt.Errorf("registry.backend is %q: migrations only apply to the postgres backend", cfg.Registry.Backend)
	}

	migrationConfig := migrations.DefaultConfig()
	migrationConfig.Driver = "pgx"
	migrationConfig.DSN = postgresDSN(cfg)

	manager, err := migrations.NewManager(migrationConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("open migration manager: %w", err)
	}
	return manager, func() { _ = manager.Close() }, nil
}

func postgresDSN(cfg *appconfig.Config) string {
	r := cfg.Registry
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		r.Host, r.Port, r.Database, r.Username, r.Password, r.SSLMode)
}
