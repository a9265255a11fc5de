package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultModel            = "gpt-4o-mini"
	DefaultVisionModel      = "gpt-4o"
	DefaultBaseURL          = "https://api.openai.com/v1"
	DefaultMaxTokens        = 500
	DefaultBufSize          = 100
	DefaultRetentionDays    = 30
	DefaultReminderInterval = 30
)

type Config struct {
	Bot      BotConfig      `json:"bot"`
	Channels ChannelsConfig `json:"channels"`
	Provider ProviderConfig `json:"provider"`
}

// BotConfig holds the remittance flow settings.
type BotConfig struct {
	// DataDir holds the session database and the WhatsApp device store.
	DataDir string `json:"dataDir"`
	// RatesDir holds the daily <YYYY-MM-DD>.json rate files. Defaults to
	// <dataDir>/rates.
	RatesDir string `json:"ratesDir,omitempty"`
	// SessionRetentionDays is how long an idle session survives the sweep.
	SessionRetentionDays int `json:"sessionRetentionDays"`
	// ReminderIntervalMinutes rate-limits the paused-bot reminder.
	ReminderIntervalMinutes int `json:"reminderIntervalMinutes"`
	// TrustKYCAssertion accepts a user's claim that identity verification
	// is complete without an external check. When false, the claim
	// escalates to a human for manual review instead.
	TrustKYCAssertion bool `json:"trustKycAssertion"`
	// USDConversions overrides the approximate USD-to-local multipliers.
	USDConversions map[string]float64 `json:"usdConversions,omitempty"`
}

type ProviderConfig struct {
	APIKey      string `json:"apiKey"`
	BaseURL     string `json:"baseUrl,omitempty"`
	Model       string `json:"model,omitempty"`
	VisionModel string `json:"visionModel,omitempty"`
	MaxTokens   int    `json:"maxTokens,omitempty"`
}

type ChannelsConfig struct {
	WhatsApp WhatsAppConfig `json:"whatsapp"`
	Telegram TelegramConfig `json:"telegram"`
}

type WhatsAppConfig struct {
	Enabled bool `json:"enabled"`
	// DBPath is the whatsmeow device store; defaults under Bot.DataDir.
	DBPath    string   `json:"dbPath,omitempty"`
	AllowFrom []string `json:"allowFrom"`
}

type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"`
	Proxy     string   `json:"proxy,omitempty"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".remesabot")
	return &Config{
		Bot: BotConfig{
			DataDir:                 dataDir,
			SessionRetentionDays:    DefaultRetentionDays,
			ReminderIntervalMinutes: DefaultReminderInterval,
			TrustKYCAssertion:       true,
		},
		Provider: ProviderConfig{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			VisionModel: DefaultVisionModel,
			MaxTokens:   DefaultMaxTokens,
		},
		Channels: ChannelsConfig{},
	}
}

func ConfigDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".remesabot")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if key := os.Getenv("REMESABOT_API_KEY"); key != "" {
		cfg.Provider.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = key
	}
	if url := os.Getenv("REMESABOT_BASE_URL"); url != "" {
		cfg.Provider.BaseURL = url
	}
	if model := os.Getenv("REMESABOT_MODEL"); model != "" {
		cfg.Provider.Model = model
	}
	if token := os.Getenv("REMESABOT_TELEGRAM_TOKEN"); token != "" {
		cfg.Channels.Telegram.Token = token
	}
	if dir := os.Getenv("REMESABOT_RATES_DIR"); dir != "" {
		cfg.Bot.RatesDir = dir
	}
	if dir := os.Getenv("REMESABOT_DATA_DIR"); dir != "" {
		cfg.Bot.DataDir = dir
	}
	if trust := os.Getenv("REMESABOT_TRUST_KYC"); trust != "" {
		if parsed, err := strconv.ParseBool(trust); err == nil {
			cfg.Bot.TrustKYCAssertion = parsed
		}
	}

	if cfg.Bot.DataDir == "" {
		cfg.Bot.DataDir = DefaultConfig().Bot.DataDir
	}
	if cfg.Bot.RatesDir == "" {
		cfg.Bot.RatesDir = filepath.Join(cfg.Bot.DataDir, "rates")
	}
	if cfg.Bot.SessionRetentionDays <= 0 {
		cfg.Bot.SessionRetentionDays = DefaultRetentionDays
	}
	if cfg.Bot.ReminderIntervalMinutes <= 0 {
		cfg.Bot.ReminderIntervalMinutes = DefaultReminderInterval
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = DefaultBaseURL
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultModel
	}
	if cfg.Provider.MaxTokens <= 0 {
		cfg.Provider.MaxTokens = DefaultMaxTokens
	}

	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(ConfigPath(), data, 0644)
}

// SessionDBPath is where the session store lives.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.Bot.DataDir, "sessions.db")
}

// WhatsAppDBPath is where the whatsmeow device store lives.
func (c *Config) WhatsAppDBPath() string {
	if c.Channels.WhatsApp.DBPath != "" {
		return c.Channels.WhatsApp.DBPath
	}
	return filepath.Join(c.Bot.DataDir, "whatsapp.db")
}
