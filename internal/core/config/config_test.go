package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rentops-lab/rentops/internal/core/proration"
)

func TestLoad_ValidConfig(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "rentops.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
server:
  port: 9090
  host: "127.0.0.1"
  mode: "debug"
database:
  type: "memory"
  seed_path: "./seed.yaml"
logging:
  format: "text"
  level: "debug"
proration:
  month_count: "calendar"
reporting:
  worker_count: 2
  cache:
    enabled: true
    addr: "redis:6379"
    ttl: "1m"
events:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
`), 0o644))

	cfg, err := Load(cfgPath, "")
	requireNoError(t, err)

	if cfg.Server.Port != 9090 || cfg.Database.Type != "memory" {
		t.Fatalf("file values not applied: %+v", cfg.Server)
	}
	if cfg.Proration.ProrationPolicy().MonthCount != proration.MonthCountCalendar {
		t.Fatalf("expected calendar month count, got %q", cfg.Proration.MonthCount)
	}
	if cfg.Proration.LongStayThresholdDays != 30 || cfg.Reporting.DailyMaxDays != 31 {
		t.Fatalf("defaults not applied: %+v %+v", cfg.Proration, cfg.Reporting)
	}
	if cfg.Availability.MaxSuggestions != 5 {
		t.Fatalf("expected default max_suggestions 5, got %d", cfg.Availability.MaxSuggestions)
	}
	if cfg.Reporting.Cache.TTLDuration() != time.Minute {
		t.Fatalf("expected 1m cache ttl, got %s", cfg.Reporting.Cache.TTLDuration())
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Topic != "rentops.commitments" {
		t.Fatalf("unexpected events config: %+v", cfg.Events)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "rentops.yaml")
	requireNoError(t, os.WriteFile(cfgPath, []byte(`
database:
  type: "memory"
reporting:
  worker_count: 2
`), 0o644))

	t.Setenv("RENTOPS_REPORTING__WORKER_COUNT", "6")
	t.Setenv("RENTOPS_SERVER__PORT", "7000")

	cfg, err := Load(cfgPath, "")
	requireNoError(t, err)
	if cfg.Reporting.WorkerCount != 6 {
		t.Fatalf("expected env worker_count 6, got %d", cfg.Reporting.WorkerCount)
	}
	if cfg.Server.Port != 7000 {
		t.Fatalf("expected env port 7000, got %d", cfg.Server.Port)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	root := t.TempDir()
	envPath := filepath.Join(root, ".env")
	requireNoError(t, os.WriteFile(envPath, []byte("RENTOPS_DATABASE__TYPE=memory\nRENTOPS_AVAILABILITY__MAX_SUGGESTIONS=3\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("RENTOPS_DATABASE__TYPE")
		os.Unsetenv("RENTOPS_AVAILABILITY__MAX_SUGGESTIONS")
	})

	cfg, err := Load("", envPath)
	requireNoError(t, err)
	if cfg.Database.Type != "memory" || cfg.Availability.MaxSuggestions != 3 {
		t.Fatalf("dotenv values not applied: %+v %+v", cfg.Database, cfg.Availability)
	}
}

func TestLoad_MissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	requireNoError(t, err)
}

func TestLoad_InvalidValuesFailStartup(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "port",
			yaml:    "server:\n  port: -1\n",
			wantErr: "invalid server.port",
		},
		{
			name:    "database type",
			yaml:    "database:\n  type: \"sqlite\"\n",
			wantErr: "unsupported database.type",
		},
		{
			name:    "month count",
			yaml:    "proration:\n  month_count: \"weekly\"\n",
			wantErr: "invalid proration.month_count",
		},
		{
			name:    "worker count",
			yaml:    "reporting:\n  worker_count: 0\n",
			wantErr: "reporting.worker_count must be > 0",
		},
		{
			name:    "cache ttl",
			yaml:    "reporting:\n  cache:\n    enabled: true\n    ttl: \"soon\"\n",
			wantErr: "invalid reporting.cache.ttl",
		},
		{
			name:    "events without brokers",
			yaml:    "events:\n  enabled: true\n",
			wantErr: "events.brokers is required",
		},
		{
			name:    "log format",
			yaml:    "logging:\n  format: \"xml\"\n",
			wantErr: "invalid logging.format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "rentops.yaml")
			requireNoError(t, os.WriteFile(cfgPath, []byte(tc.yaml), 0o644))

			_, err := Load(cfgPath, "")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
