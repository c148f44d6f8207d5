package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvLLMProvider  = "KOTAE_LLM_PROVIDER"
	EnvLLMModel     = "KOTAE_LLM_MODEL"
	EnvLLMBaseURL   = "KOTAE_LLM_BASE_URL"
	EnvHost         = "KOTAE_HOST"
	EnvPort         = "KOTAE_PORT"
	EnvDebug        = "KOTAE_DEBUG"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with values from the environment.
func ApplyEnv(cfg *Config) error {
	cfg.LLM.APIKey = getEnv(EnvGeminiAPIKey, cfg.LLM.APIKey)
	cfg.LLM.Provider = getEnv(EnvLLMProvider, cfg.LLM.Provider)
	cfg.LLM.Model = getEnv(EnvLLMModel, cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv(EnvLLMBaseURL, cfg.LLM.BaseURL)
	cfg.Server.Host = getEnv(EnvHost, cfg.Server.Host)

	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid %s: %q", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", EnvDebug, v)
		}
		cfg.Debug = debug
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
