package logger

import (
	"testing"

	"github.com/ameer851/axix-finance-sub003/internal/config"
)

func TestNewFallsBackOnBadSettings(t *testing.T) {
	log, err := New(config.LogConfig{Level: "loud", Encoding: "xml"}, "accrual")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(0) {
		t.Fatalf("info level not enabled")
	}
	if log.Core().Enabled(-1) {
		t.Fatalf("debug enabled on fallback level")
	}
}
