// Package llm provides chat provider configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// ProviderOptions defines the configuration of a chat provider.
type ProviderOptions struct {
	// Provider is the provider name ("openai" covers every
	// OpenAI-compatible API, including Groq).
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the API base address.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the API key. When empty the service runs without an LLM
	// and serves the canned fallback answer.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the chat model name.
	Model string `json:"model" mapstructure:"model"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the maximum retry count.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// Organization is the optional organization ID.
	Organization string `json:"organization" mapstructure:"organization"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the answer length in tokens.
	MaxTokens int `json:"max-tokens" mapstructure:"max-tokens"`
}

// NewChatOptions creates defaults aimed at the Groq-hosted model the
// service ships with. Any OpenAI-compatible endpoint works.
func NewChatOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:    "openai",
		BaseURL:     "https://api.groq.com/openai/v1",
		Model:       "llama-3.3-70b-versatile",
		Timeout:     120 * time.Second,
		MaxRetries:  3,
		Temperature: 0.0,
		MaxTokens:   800,
	}
}

// AddFlags adds chat provider flags to the given FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Provider, "chat.provider", o.Provider, "Chat provider name")
	fs.StringVar(&o.BaseURL, "chat.base-url", o.BaseURL, "Chat API base URL")
	fs.StringVar(&o.APIKey, "chat.api-key", o.APIKey, "Chat API key (empty disables LLM answers)")
	fs.StringVar(&o.Model, "chat.model", o.Model, "Chat model name")
	fs.DurationVar(&o.Timeout, "chat.timeout", o.Timeout, "Chat request timeout")
	fs.IntVar(&o.MaxRetries, "chat.max-retries", o.MaxRetries, "Chat max retries")
	fs.StringVar(&o.Organization, "chat.organization", o.Organization, "Chat API organization ID")
	fs.Float64Var(&o.Temperature, "chat.temperature", o.Temperature, "Chat sampling temperature")
	fs.IntVar(&o.MaxTokens, "chat.max-tokens", o.MaxTokens, "Maximum answer tokens")
}

// Validate validates the provider options.
func (o *ProviderOptions) Validate() error {
	if o.Provider == "" {
		return fmt.Errorf("chat.provider is required")
	}
	if o.BaseURL == "" {
		return fmt.Errorf("chat.base-url is required")
	}
	if o.Model == "" {
		return fmt.Errorf("chat.model is required")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("chat.timeout must be positive")
	}
	return nil
}

// Complete completes the options.
func (o *ProviderOptions) Complete() error {
	return nil
}

// Enabled reports whether an LLM call can be made at all.
func (o *ProviderOptions) Enabled() bool {
	return o.APIKey != ""
}

// ToConfigMap converts the options to the provider factory config map.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"chat_model":   o.Model,
		"timeout":      o.Timeout,
		"max_retries":  o.MaxRetries,
		"organization": o.Organization,
		"temperature":  o.Temperature,
		"max_tokens":   o.MaxTokens,
	}
}
