// Package openai provides an OpenAI-compatible chat provider.
// It works against the official OpenAI API and any service exposing the
// same surface (Groq, Azure OpenAI, LocalAI and similar) by pointing
// base_url at the compatible endpoint.
package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kart-io/docqa/pkg/llm"
)

// ProviderName is the registry name of this provider.
const ProviderName = "openai"

func init() {
	llm.RegisterChatProvider(ProviderName, func(config map[string]any) (llm.ChatProvider, error) {
		return NewProvider(config)
	})
}

// Config holds the provider configuration.
type Config struct {
	// BaseURL is the API base address. Point it at a compatible service
	// to use something other than api.openai.com.
	BaseURL string `json:"base_url" mapstructure:"base_url"`

	// APIKey is the API key.
	APIKey string `json:"api_key" mapstructure:"api_key"`

	// ChatModel is the model used for chat completions.
	ChatModel string `json:"chat_model" mapstructure:"chat_model"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on transient failures.
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`

	// Organization is the optional organization ID.
	Organization string `json:"organization" mapstructure:"organization"`

	// Temperature controls sampling randomness. Nil leaves the API
	// default; an explicit 0 is sent to the API as 0.
	Temperature *float64 `json:"temperature" mapstructure:"temperature"`

	// MaxTokens caps the generated tokens. Zero means the API default.
	MaxTokens int `json:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://api.openai.com/v1",
		ChatModel:  "gpt-4o-mini",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// Provider implements llm.ChatProvider on top of the OpenAI API.
type Provider struct {
	client *goopenai.Client
	config *Config
}

// NewProvider creates a Provider from a config map.
func NewProvider(config map[string]any) (*Provider, error) {
	cfg := DefaultConfig()
	applyConfig(cfg, config)

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: api_key is required")
	}
	if cfg.ChatModel == "" {
		return nil, fmt.Errorf("openai: chat_model is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.Organization != "" {
		clientCfg.OrgID = cfg.Organization
	}

	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		config: cfg,
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return ProviderName
}

// Chat runs a multi-turn conversation.
func (p *Provider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    p.config.ChatModel,
		Messages: toChatMessages(messages),
	}
	if p.config.Temperature != nil {
		req.Temperature = requestTemperature(*p.config.Temperature)
	}
	if p.config.MaxTokens > 0 {
		req.MaxTokens = p.config.MaxTokens
	}

	return p.complete(ctx, req)
}

// Generate produces text for a single prompt.
func (p *Provider) Generate(ctx context.Context, prompt string, systemPrompt string) (string, error) {
	messages := make([]llm.Message, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: prompt})

	return p.Chat(ctx, messages)
}

// complete issues the request with bounded retries.
func (p *Provider) complete(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	var lastErr error

	attempts := p.config.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if p.config.Timeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		}

		resp, err := p.client.CreateChatCompletion(callCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("openai: empty response from %s", p.config.ChatModel)
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err

		// Back off between attempts, but give up as soon as the caller's
		// context is done.
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * time.Second):
		}
	}

	return "", fmt.Errorf("openai: chat completion failed after %d attempts: %w", attempts, lastErr)
}

// requestTemperature converts a configured temperature to the wire
// value. The client drops a literal zero from the request body via
// omitempty, so an explicit 0 is sent as the smallest positive float32,
// which the API treats as 0.
func requestTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func toChatMessages(messages []llm.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = goopenai.ChatCompletionMessage{
			Role:    toChatRole(m.Role),
			Content: m.Content,
		}
	}
	return out
}

func toChatRole(role llm.Role) string {
	switch role {
	case llm.RoleSystem:
		return goopenai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		return goopenai.ChatMessageRoleAssistant
	default:
		return goopenai.ChatMessageRoleUser
	}
}

// applyConfig overlays values from the config map onto cfg.
func applyConfig(cfg *Config, config map[string]any) {
	if v, ok := asString(config["base_url"]); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := asString(config["api_key"]); ok {
		cfg.APIKey = v
	}
	if v, ok := asString(config["chat_model"]); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := asString(config["organization"]); ok {
		cfg.Organization = v
	}
	if v, ok := asDuration(config["timeout"]); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := asInt(config["max_retries"]); ok && v > 0 {
		cfg.MaxRetries = v
	}
	if v, ok := asFloat(config["temperature"]); ok {
		cfg.Temperature = &v
	}
	if v, ok := asInt(config["max_tokens"]); ok && v > 0 {
		cfg.MaxTokens = v
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asDuration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case time.Duration:
		return d, true
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case int:
		return time.Duration(d) * time.Second, true
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
