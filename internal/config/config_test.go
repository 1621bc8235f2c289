package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATAPROF_SAMPLE_SIZE", "")
	t.Setenv("DATAPROF_SEED", "")
	t.Setenv("DATAPROF_WORKERS", "")
	t.Setenv("DATAPROF_REPORT_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.SampleSize != nil {
		t.Error("sampling should be off by default")
	}
	if cfg.Analysis.Seed != 42 {
		t.Errorf("default seed = %d, want 42", cfg.Analysis.Seed)
	}
	if cfg.Analysis.Workers != 4 {
		t.Errorf("default workers = %d, want 4", cfg.Analysis.Workers)
	}
	if cfg.Paths.ReportDir != "." {
		t.Errorf("default report dir = %q", cfg.Paths.ReportDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATAPROF_SAMPLE_SIZE", "5000")
	t.Setenv("DATAPROF_SEED", "7")
	t.Setenv("DATAPROF_WORKERS", "2")
	t.Setenv("DATAPROF_DB_URL", "postgres://localhost/orders")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Analysis.SampleSize == nil || *cfg.Analysis.SampleSize != 5000 {
		t.Errorf("sample size not picked up: %v", cfg.Analysis.SampleSize)
	}
	if cfg.Analysis.Seed != 7 {
		t.Errorf("seed = %d, want 7", cfg.Analysis.Seed)
	}
	if cfg.Database.URL != "postgres://localhost/orders" {
		t.Errorf("db url = %q", cfg.Database.URL)
	}
}

func TestConnectionURLPrefersExplicit(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://explicit/db", Name: "ignored", Host: "localhost", Port: 5432}
	if got := c.ConnectionURL(); got != "postgres://explicit/db" {
		t.Errorf("url = %q", got)
	}
}

func TestConnectionURLFromComponents(t *testing.T) {
	c := DatabaseConfig{Host: "dbhost", Port: 5433, Name: "orders", User: "analyst", SSLMode: "require"}
	want := "postgres://analyst@dbhost:5433/orders?sslmode=require"
	if got := c.ConnectionURL(); got != want {
		t.Errorf("url = %q, want %q", got, want)
	}

	c.User = ""
	want = "postgres://dbhost:5433/orders?sslmode=require"
	if got := c.ConnectionURL(); got != want {
		t.Errorf("url without user = %q, want %q", got, want)
	}

	if got := (DatabaseConfig{Host: "localhost", Port: 5432}).ConnectionURL(); got != "" {
		t.Errorf("url without a database name = %q, want empty", got)
	}
}

func TestLoadRejectsBadSampleSize(t *testing.T) {
	for _, raw := range []string{"0", "-5", "lots"} {
		t.Setenv("DATAPROF_SAMPLE_SIZE", raw)
		if _, err := Load(); err == nil {
			t.Errorf("DATAPROF_SAMPLE_SIZE=%q should be rejected", raw)
		}
	}
}

func TestLoadRejectsBadWorkers(t *testing.T) {
	t.Setenv("DATAPROF_SAMPLE_SIZE", "")
	t.Setenv("DATAPROF_WORKERS", "0")
	if _, err := Load(); err == nil {
		t.Error("DATAPROF_WORKERS=0 should be rejected")
	}
}
