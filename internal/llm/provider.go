// Package llm provides a provider-agnostic chat interface over hosted and
// local language models.
package llm

import (
	"context"
	"errors"
)

// Roles used in Message.Role.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrMissingAPIKey is returned when a hosted provider is created without a credential.
var ErrMissingAPIKey = errors.New("llm: missing API key")

// Message is a chat message in a provider-agnostic format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options holds per-call overrides.
type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
}

// Option configures a single call.
type Option func(*Options)

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

// WithMaxTokens caps the length of the reply.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func buildOptions(defaults Options, opts []Option) Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Provider is any chat-capable model backend.
type Provider interface {
	// Chat sends the conversation and returns the model's reply text.
	Chat(ctx context.Context, history []Message, opts ...Option) (string, error)
	// Name identifies the backend in logs.
	Name() string
}
