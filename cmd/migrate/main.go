// Comando migrate: aplica o revierte las migraciones SQL embebidas.
//
//	migrate up
//	migrate down --steps 1
//	migrate version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jhoicas/facturacion-dte/internal/infrastructure/postgres"
	"github.com/jhoicas/facturacion-dte/pkg/config"
	"github.com/jhoicas/facturacion-dte/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var databaseURL string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Migraciones de la base de datos de facturación",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "connection string (por defecto DATABASE_URL / DB_*)")

	// withMigrator resuelve la configuración y abre el migrador para cada subcomando.
	withMigrator := func(fn func(mg *postgres.Migrator, log *logger.Logger) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
			url := databaseURL
			if url == "" {
				url = cfg.DB.ConnectionString()
			}
			mg, err := postgres.NewMigrator(url)
			if err != nil {
				return err
			}
			defer func() { _ = mg.Close() }()
			return fn(mg, log)
		}
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: withMigrator(func(mg *postgres.Migrator, log *logger.Logger) error {
			if err := mg.Up(); err != nil {
				return err
			}
			return logVersion(mg, log, "migraciones aplicadas")
		}),
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revierte migraciones (--steps 0 revierte todas)",
		RunE: withMigrator(func(mg *postgres.Migrator, log *logger.Logger) error {
			if err := mg.Down(steps); err != nil {
				return err
			}
			return logVersion(mg, log, "migraciones revertidas")
		}),
	}
	down.Flags().IntVar(&steps, "steps", 1, "número de migraciones a revertir")

	version := &cobra.Command{
		Use:   "version",
		Short: "Muestra la versión aplicada",
		RunE: withMigrator(func(mg *postgres.Migrator, log *logger.Logger) error {
			return logVersion(mg, log, "versión actual")
		}),
	}

	root.AddCommand(up, down, version)
	return root
}

func logVersion(mg *postgres.Migrator, log *logger.Logger, msg string) error {
	v, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("leer versión: %w", err)
	}
	log.Info().Uint("version", v).Bool("dirty", dirty).Msg(msg)
	return nil
}
