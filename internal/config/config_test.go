package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INVENTORY_API_BASE_URL", "http://localhost:9000")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.MongoDB.DBName != "opname" {
		t.Fatalf("expected default db name, got %s", cfg.MongoDB.DBName)
	}
	if cfg.Opname.DraftDebounce != 800*time.Millisecond {
		t.Fatalf("expected default debounce 800ms, got %v", cfg.Opname.DraftDebounce)
	}
	if cfg.Monitoring.CronSchedule == "" {
		t.Fatalf("expected default cron schedule")
	}
}

func TestLoadMissingInventoryURL(t *testing.T) {
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "INVENTORY_API_BASE_URL") {
		t.Fatalf("expected inventory url validation error, got %v", err)
	}
}

func TestLoadInvalidDebounce(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DRAFT_DEBOUNCE_MS", "soon")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "DRAFT_DEBOUNCE_MS") {
		t.Fatalf("expected debounce parse error, got %v", err)
	}
}

func TestValidateSheetsNeedsCredentials(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("EXPORT_SPREADSHEET_ID", "sheet-1")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "GOOGLE_SHEETS_CREDENTIALS_PATH") {
		t.Fatalf("expected sheets credentials validation error, got %v", err)
	}
}
