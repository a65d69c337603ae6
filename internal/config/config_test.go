package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvOnlyDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cron.DailyAccrual != "0 5 0 * * *" {
		t.Fatalf("cron=%q", cfg.Cron.DailyAccrual)
	}
	if !cfg.Accrual.SendCompletionEmails || cfg.Accrual.SendIncrementEmails {
		t.Fatalf("email defaults=%+v", cfg.Accrual)
	}
	cutover, err := cfg.Accrual.Cutover()
	if err != nil {
		t.Fatalf("cutover: %v", err)
	}
	if !cutover.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cutover=%s", cutover)
	}
	if cfg.Accrual.EmailTimeout != 15*time.Second {
		t.Fatalf("email timeout=%s", cfg.Accrual.EmailTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ACCRUAL_DB_DSN", "postgres://localhost/accrual")
	t.Setenv("ACCRUAL_ACCRUAL_POLICY_CUTOVER", "2026-01-15")
	t.Setenv("ACCRUAL_LOCK_BACKEND", "redis")
	t.Setenv("EASYWEB3_API_BASE", "https://paas.example.com")

	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DB.DSN != "postgres://localhost/accrual" {
		t.Fatalf("dsn=%q", cfg.DB.DSN)
	}
	if cfg.Lock.Backend != "redis" {
		t.Fatalf("lock backend=%q", cfg.Lock.Backend)
	}
	if cfg.PaaS.BaseURL != "https://paas.example.com" {
		t.Fatalf("paas base=%q", cfg.PaaS.BaseURL)
	}
	cutover, _ := cfg.Accrual.Cutover()
	if !cutover.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cutover=%s", cutover)
	}
}

func TestLoadRejectsBadCutover(t *testing.T) {
	t.Setenv("ACCRUAL_ACCRUAL_POLICY_CUTOVER", "next tuesday")
	if _, err := Load("", true); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("server:\n  http_addr: \":9090\"\naccrual:\n  send_increment_emails: true\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" || !cfg.Accrual.SendIncrementEmails {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestAccrualCutoverParse(t *testing.T) {
	got, err := AccrualConfig{PolicyCutover: "2025-09-01"}.Cutover()
	if err != nil {
		t.Fatalf("plain date: %v", err)
	}
	if !got.Equal(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cutover=%v", got)
	}
	if _, err := (AccrualConfig{PolicyCutover: "next tuesday"}).Cutover(); err == nil {
		t.Fatalf("expected error for unparseable cutover")
	}
}
