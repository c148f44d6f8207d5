package llm

import (
	"fmt"
	"time"
)

// Provider types accepted by New.
const (
	TypeGemini   = "gemini"
	TypeOllama   = "ollama"
	TypeScripted = "scripted"
)

// Config selects and configures a provider.
type Config struct {
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
	// Script holds the replies for the scripted provider.
	Script []string
}

// New builds the provider named by cfg.Provider.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case TypeGemini, "":
		g, err := NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	case TypeOllama:
		if cfg.Model == "" {
			return nil, fmt.Errorf("ollama provider requires a model name")
		}
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.Timeout), nil
	case TypeScripted:
		script := cfg.Script
		if len(script) == 0 {
			script = []string{"Final Answer: no model is configured, so I cannot answer from the documents."}
		}
		return NewScriptedProvider(script...), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
