package biz

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAppendAndHistory(t *testing.T) {
	m := NewMemoryManager()

	m.Append("s1", RoleUser, "what is this about")
	m.Append("s1", RoleAssistant, "a test document")
	m.Append("s2", RoleUser, "unrelated")

	h := m.History("s1")
	require.Len(t, h, 2)
	assert.Equal(t, Turn{Role: RoleUser, Content: "what is this about"}, h[0])
	assert.Equal(t, Turn{Role: RoleAssistant, Content: "a test document"}, h[1])

	assert.Len(t, m.History("s2"), 1)
	assert.Nil(t, m.History("unknown"))
}

func TestMemoryHistoryIsACopy(t *testing.T) {
	m := NewMemoryManager()
	m.Append("s1", RoleUser, "original")

	h := m.History("s1")
	h[0].Content = "mutated"

	assert.Equal(t, "original", m.History("s1")[0].Content)
}

func TestMemoryReset(t *testing.T) {
	m := NewMemoryManager()
	m.Append("s1", RoleUser, "hello")

	assert.True(t, m.Reset("s1"))
	assert.Nil(t, m.History("s1"))
	assert.False(t, m.Reset("s1"))
}

func TestMemorySessions(t *testing.T) {
	m := NewMemoryManager()
	m.Append("b", RoleUser, "x")
	m.Append("a", RoleUser, "y")

	assert.Equal(t, []string{"a", "b"}, m.Sessions())
}

func TestMemoryConcurrentAppend(t *testing.T) {
	m := NewMemoryManager()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				m.Append("shared", RoleUser, fmt.Sprintf("turn-%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.History("shared"), 200)
}

func TestFormatHistory(t *testing.T) {
	assert.Equal(t, "", FormatHistory(nil))

	turns := []Turn{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	assert.Equal(t, "User: hi\nAssistant: hello", FormatHistory(turns))
}
