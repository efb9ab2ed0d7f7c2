package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
}

func (s *stubProvider) Chat(_ context.Context, _ []Message) (string, error) { return "", nil }
func (s *stubProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return "", nil
}
func (s *stubProvider) Name() string { return s.name }

func TestRegisterAndNewChatProvider(t *testing.T) {
	RegisterChatProvider("stub", func(config map[string]any) (ChatProvider, error) {
		name, _ := config["name"].(string)
		return &stubProvider{name: name}, nil
	})

	p, err := NewChatProvider("stub", map[string]any{"name": "stub-1"})
	require.NoError(t, err)
	assert.Equal(t, "stub-1", p.Name())

	assert.Contains(t, Providers(), "stub")
}

func TestNewChatProviderUnknown(t *testing.T) {
	_, err := NewChatProvider("no-such-provider", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chat provider")
}
