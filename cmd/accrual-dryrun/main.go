// Command accrual-dryrun runs the daily accrual once in dry-run mode and
// prints what a live run would do. Nothing is written except the job_runs
// record.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/ameer851/axix-finance-sub003/internal/accrual"
	"github.com/ameer851/axix-finance-sub003/internal/config"
	"github.com/ameer851/axix-finance-sub003/internal/db"
	"github.com/ameer851/axix-finance-sub003/internal/logger"
	"github.com/ameer851/axix-finance-sub003/internal/models"
	gormrepository "github.com/ameer851/axix-finance-sub003/internal/repository/gorm"
)

type harnessEnv struct {
	DSN                         string        `env:"ACCRUAL_DB_DSN,required,notEmpty"`
	PolicyCutover               string        `env:"ACCRUAL_ACCRUAL_POLICY_CUTOVER" envDefault:"2025-09-01T00:00:00Z"`
	ForceCreditOnCompletionOnly bool          `env:"ACCRUAL_ACCRUAL_FORCE_CREDIT_ON_COMPLETION_ONLY"`
	LogLevel                    string        `env:"ACCRUAL_LOG_LEVEL" envDefault:"info"`
	Timeout                     time.Duration `env:"ACCRUAL_DRYRUN_TIMEOUT" envDefault:"5m"`
}

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	var cfg harnessEnv
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "missing credentials: %v\n", err)
		return 1
	}
	cutover, err := config.AccrualConfig{PolicyCutover: cfg.PolicyCutover}.Cutover()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log, err := logger.New(config.LogConfig{Level: cfg.LogLevel, Encoding: "json"}, "accrual-dryrun")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.Sync()

	dbConn, err := db.Open(config.DBConfig{DSN: cfg.DSN, MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		return 1
	}
	defer db.Close(dbConn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	job := &accrual.Job{
		Store:   gormrepository.New(dbConn.Gorm),
		Logger:  log,
		Cutover: cutover,
	}
	res, err := job.Run(ctx, accrual.Options{
		DryRun:                      true,
		Source:                      models.JobSourceManualTest,
		ForceCreditOnCompletionOnly: cfg.ForceCreditOnCompletionOnly,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dry run failed: %v\n", err)
		return 1
	}

	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	return 0
}
