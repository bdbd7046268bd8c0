package config

import (
	"testing"
	"time"
)

// setRequired sets the minimal environment for Load to succeed
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_TOKEN", "123456:test-token")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com/webhook")
	t.Setenv("OPENAI_API_KEY", "sk-test")
}

func clearOptional(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_DRIVER", "SCHEDULE_FILE", "DB_FILE",
		"OPENAI_BASE_URL", "LLM_MODEL", "LLM_TIMEOUT",
		"SESSION_MAX_TURNS", "SESSION_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverJSONFile {
		t.Errorf("Driver = %q, want jsonfile", cfg.Storage.Driver)
	}
	if cfg.Storage.SchedulePath != "schedule.json" {
		t.Errorf("SchedulePath = %q", cfg.Storage.SchedulePath)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Session.MaxTurns != 200 {
		t.Errorf("MaxTurns = %d", cfg.Session.MaxTurns)
	}
	if cfg.Session.TTL != time.Hour {
		t.Errorf("TTL = %v", cfg.Session.TTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", DriverSQLite)
	t.Setenv("LLM_TIMEOUT", "30s")
	t.Setenv("SESSION_MAX_TURNS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Driver = %q", cfg.Storage.Driver)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v", cfg.LLM.Timeout)
	}
	if cfg.Session.MaxTurns != 50 {
		t.Errorf("MaxTurns = %d", cfg.Session.MaxTurns)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	cases := []string{"TELEGRAM_TOKEN", "WEBHOOK_URL", "OPENAI_API_KEY"}

	for _, missing := range cases {
		t.Run(missing, func(t *testing.T) {
			setRequired(t)
			clearOptional(t)
			t.Setenv(missing, "")

			if _, err := Load(); err == nil {
				t.Errorf("Load succeeded without %s", missing)
			}
		})
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("STORAGE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Error("Load accepted an unknown storage driver")
	}
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("LLM_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s fallback", cfg.LLM.Timeout)
	}
}

func TestLoadLLM(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("LLM_TIMEOUT", "")

	cfg, err := LoadLLM()
	if err != nil {
		t.Fatalf("LoadLLM failed: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
}

func TestLoadLLM_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := LoadLLM(); err == nil {
		t.Error("LoadLLM succeeded without an API key")
	}
}
