// Package llm provides a unified abstraction over hosted LLM chat APIs.
//
// Providers register themselves by name in an init function of their
// subpackage; callers import the subpackage for its side effect and build
// instances through NewChatProvider:
//
//	import _ "github.com/kart-io/docqa/pkg/llm/openai"
//
//	provider, err := llm.NewChatProvider("openai", map[string]any{
//	    "api_key":    "your-api-key",
//	    "chat_model": "llama-3.3-70b-versatile",
//	})
package llm

import (
	"context"
	"fmt"
	"sync"
)

// ChatProvider defines a chat completion provider.
type ChatProvider interface {
	// Chat runs a multi-turn conversation and returns the answer text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Generate produces text for a single prompt.
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Message represents one turn of a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role defines the message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatProviderFactory builds a ChatProvider from a config map.
type ChatProviderFactory func(config map[string]any) (ChatProvider, error)

var registry = &providerRegistry{
	chatProviders: make(map[string]ChatProviderFactory),
}

type providerRegistry struct {
	mu            sync.RWMutex
	chatProviders map[string]ChatProviderFactory
}

// RegisterChatProvider registers a chat provider factory under a name.
// Registering the same name twice overwrites the previous factory.
func RegisterChatProvider(name string, factory ChatProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.chatProviders[name] = factory
}

// NewChatProvider creates a chat provider instance by name.
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.chatProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown chat provider: %s", name)
	}
	return factory(config)
}

// Providers returns the names of all registered chat providers.
func Providers() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.chatProviders))
	for name := range registry.chatProviders {
		names = append(names, name)
	}
	return names
}
