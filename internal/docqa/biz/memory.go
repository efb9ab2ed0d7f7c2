package biz

import (
	"sort"
	"strings"
	"sync"
)

// Conversation roles as rendered into the prompt.
const (
	RoleUser      = "User"
	RoleAssistant = "Assistant"
)

// Turn is one entry in a session's conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MemoryManager keeps per-session conversation history. Sessions are
// created on first append and live until reset.
type MemoryManager struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewMemoryManager creates an empty MemoryManager.
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		sessions: make(map[string][]Turn),
	}
}

// Append adds a turn to the session's history.
func (m *MemoryManager) Append(sessionID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = append(m.sessions[sessionID], Turn{Role: role, Content: content})
}

// History returns a copy of the session's turns, oldest first.
func (m *MemoryManager) History(sessionID string) []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	turns := m.sessions[sessionID]
	if len(turns) == 0 {
		return nil
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Reset drops the session's history. Returns true when the session
// existed.
func (m *MemoryManager) Reset(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	return ok
}

// Sessions returns the known session IDs, sorted.
func (m *MemoryManager) Sessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FormatHistory renders turns as "Role: content" lines for prompt
// injection.
func FormatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(t.Role)
		sb.WriteString(": ")
		sb.WriteString(t.Content)
	}
	return sb.String()
}
