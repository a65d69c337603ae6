package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/ameer851/axix-finance-sub003/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// AutoMigrate creates the tables from the models. Constraints gorm cannot
// express live in the goose migrations applied by Migrate.
func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil {
		return nil
	}
	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Investment{},
		&models.InvestmentReturn{},
		&models.CompletedInvestment{},
		&models.JobRun{},
		&models.SystemSetting{},
	)
}

func Migrate(ctx context.Context, db *DB, log *zap.Logger) error {
	if db == nil || db.SQL == nil {
		return nil
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.SQL, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

type gooseLogger struct {
	log *zap.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	if l.log != nil {
		l.log.Info(fmt.Sprintf(format, v...), zap.String("component", "goose"))
	}
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	if l.log != nil {
		l.log.Fatal(fmt.Sprintf(format, v...), zap.String("component", "goose"))
	}
}
