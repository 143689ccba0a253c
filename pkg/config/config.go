package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the root runtime configuration loaded from config.json.
type Config struct {
	Chat    ChatConfig    `json:"chat"`
	Logging LoggingConfig `json:"logging,omitempty"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// ChatConfig describes the identities the console chat runs with.
type ChatConfig struct {
	BotID      string `json:"bot_id"`
	BotName    string `json:"bot_name"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	ChannelID  string `json:"channel_id"`
	ServiceURL string `json:"service_url"`
}

// Default returns the built-in configuration used when no config.json is
// present.
func Default() *Config {
	return &Config{
		Chat: ChatConfig{
			BotID:      "bot",
			BotName:    "turnkit",
			UserID:     "user",
			UserName:   "you",
			ChannelID:  "console",
			ServiceURL: "local",
		},
	}
}

// LoadConfig resolves config.json, unmarshals it, and fills gaps with
// defaults. A missing file is not an error; the defaults apply.
func LoadConfig() (*Config, error) {
	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults restores required chat identities wiped by explicit empty
// values in the file.
func applyDefaults(cfg *Config) {
	defaults := Default()

	if strings.TrimSpace(cfg.Chat.BotID) == "" {
		cfg.Chat.BotID = defaults.Chat.BotID
	}
	if strings.TrimSpace(cfg.Chat.BotName) == "" {
		cfg.Chat.BotName = defaults.Chat.BotName
	}
	if strings.TrimSpace(cfg.Chat.UserID) == "" {
		cfg.Chat.UserID = defaults.Chat.UserID
	}
	if strings.TrimSpace(cfg.Chat.ChannelID) == "" {
		cfg.Chat.ChannelID = defaults.Chat.ChannelID
	}
	if strings.TrimSpace(cfg.Chat.ServiceURL) == "" {
		cfg.Chat.ServiceURL = defaults.Chat.ServiceURL
	}
}

// findConfigPath resolves the active config file location.
//
// Precedence is TURNKIT_CONFIG first, then cwd-local fallback paths. An
// empty return with nil error means no file was found.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("TURNKIT_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("TURNKIT_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
