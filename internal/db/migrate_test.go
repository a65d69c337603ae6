package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/ameer851/axix-finance-sub003/internal/config"
)

func TestEmbeddedMigrationsHaveUpAndDown(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for _, name := range files {
		b, err := fs.ReadFile(migrationsFS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		body := string(b)
		if !strings.Contains(body, "-- +goose Up") || !strings.Contains(body, "-- +goose Down") {
			t.Fatalf("%s missing goose annotations", name)
		}
	}
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(config.DBConfig{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDSNWithTimezone(t *testing.T) {
	cases := []struct {
		dsn, tz, want string
	}{
		{"postgres://u:p@localhost:5432/axix?sslmode=disable", "UTC", "postgres://u:p@localhost:5432/axix?sslmode=disable&timezone=UTC"},
		{"postgresql://localhost/axix", "Europe/Berlin", "postgresql://localhost/axix?timezone=Europe%2FBerlin"},
		{"host=localhost dbname=axix", "UTC", "host=localhost dbname=axix TimeZone=UTC"},
		{"host=localhost dbname=axix TimeZone=Asia/Tokyo", "UTC", "host=localhost dbname=axix TimeZone=Asia/Tokyo"},
		{"postgres://localhost/axix", "", "postgres://localhost/axix"},
	}
	for _, tc := range cases {
		if got := dsnWithTimezone(tc.dsn, tc.tz); got != tc.want {
			t.Fatalf("dsnWithTimezone(%q, %q)=%q want %q", tc.dsn, tc.tz, got, tc.want)
		}
	}
}
