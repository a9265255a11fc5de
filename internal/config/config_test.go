package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Provider.Model != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.Provider.Model, DefaultModel)
	}
	if cfg.Provider.MaxTokens != DefaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", cfg.Provider.MaxTokens, DefaultMaxTokens)
	}
	if cfg.Bot.SessionRetentionDays != DefaultRetentionDays {
		t.Errorf("retention = %d, want %d", cfg.Bot.SessionRetentionDays, DefaultRetentionDays)
	}
	if cfg.Bot.ReminderIntervalMinutes != DefaultReminderInterval {
		t.Errorf("reminder interval = %d, want %d", cfg.Bot.ReminderIntervalMinutes, DefaultReminderInterval)
	}
	if !cfg.Bot.TrustKYCAssertion {
		t.Error("trustKycAssertion should be true by default")
	}
	if cfg.Bot.DataDir == "" {
		t.Error("data dir should not be empty")
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("REMESABOT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Provider.Model)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("REMESABOT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("REMESABOT_TRUST_KYC", "")

	cfgDir := filepath.Join(tmpDir, ".remesabot")
	os.MkdirAll(cfgDir, 0755)

	testCfg := map[string]any{
		"provider": map[string]any{
			"apiKey": "sk-test-key",
			"model":  "gpt-4o",
		},
		"bot": map[string]any{
			"dataDir":           "/var/lib/remesabot",
			"trustKycAssertion": false,
		},
	}
	data, _ := json.MarshalIndent(testCfg, "", "  ")
	os.WriteFile(filepath.Join(cfgDir, "config.json"), data, 0644)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.APIKey != "sk-test-key" {
		t.Errorf("apiKey = %q, want sk-test-key", cfg.Provider.APIKey)
	}
	if cfg.Provider.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", cfg.Provider.Model)
	}
	if cfg.Bot.TrustKYCAssertion {
		t.Error("trustKycAssertion override from file not applied")
	}
	if cfg.Bot.RatesDir != filepath.Join("/var/lib/remesabot", "rates") {
		t.Errorf("ratesDir = %q, want derived from dataDir", cfg.Bot.RatesDir)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("REMESABOT_API_KEY", "remesa-key")
	t.Setenv("OPENAI_API_KEY", "openai-loses")
	t.Setenv("REMESABOT_TELEGRAM_TOKEN", "tg-token")
	t.Setenv("REMESABOT_RATES_DIR", "/srv/rates")
	t.Setenv("REMESABOT_TRUST_KYC", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.APIKey != "remesa-key" {
		t.Errorf("apiKey = %q, want remesa-key", cfg.Provider.APIKey)
	}
	if cfg.Channels.Telegram.Token != "tg-token" {
		t.Errorf("telegram token = %q, want tg-token", cfg.Channels.Telegram.Token)
	}
	if cfg.Bot.RatesDir != "/srv/rates" {
		t.Errorf("ratesDir = %q, want /srv/rates", cfg.Bot.RatesDir)
	}
	if cfg.Bot.TrustKYCAssertion {
		t.Error("trust KYC env override not applied")
	}
}

func TestLoadConfig_OpenAIFallbackKey(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("REMESABOT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if cfg.Provider.APIKey != "openai-key" {
		t.Errorf("apiKey = %q, want openai-key", cfg.Provider.APIKey)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg := DefaultConfig()
	cfg.Provider.APIKey = "test-key"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".remesabot", "config.json"))
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}
	if loaded.Provider.APIKey != "test-key" {
		t.Errorf("saved apiKey = %q, want test-key", loaded.Provider.APIKey)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfgDir := filepath.Join(tmpDir, ".remesabot")
	os.MkdirAll(cfgDir, 0755)
	os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("invalid json"), 0644)

	_, err := LoadConfig()
	if err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestDBPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Bot.DataDir = "/data"

	if got := cfg.SessionDBPath(); got != filepath.Join("/data", "sessions.db") {
		t.Errorf("SessionDBPath = %q", got)
	}
	if got := cfg.WhatsAppDBPath(); got != filepath.Join("/data", "whatsapp.db") {
		t.Errorf("WhatsAppDBPath = %q", got)
	}

	cfg.Channels.WhatsApp.DBPath = "/elsewhere/wa.db"
	if got := cfg.WhatsAppDBPath(); got != "/elsewhere/wa.db" {
		t.Errorf("WhatsAppDBPath override = %q", got)
	}
}
