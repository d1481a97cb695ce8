package cmd

import (
	"context"
	"fmt"

	attachmentDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/attachment"
	expenseDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/expense"
	reportDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/report"
	userDatamodel "github.com/frahmantamala/expense-reports/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-reports/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := logger.L()

	// the SQL migrations target postgres; local sqlite databases get the schema from the models
	if cfg.Database.Driver == "sqlite" {
		if migrateRollback {
			return fmt.Errorf("rollback is not supported for sqlite")
		}
		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		gormDB, err := initGorm(cfg.Database, db)
		if err != nil {
			return err
		}
		if err := gormDB.WithContext(ctx).AutoMigrate(
			&userDatamodel.User{},
			&reportDatamodel.Report{},
			&expenseDatamodel.Expense{},
			&attachmentDatamodel.Attachment{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		lg.Info("sqlite schema migrated")
		return nil
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	lg.Info("migrations applied", "command", command, "dir", migrateDir)
	return nil
}
