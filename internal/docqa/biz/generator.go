package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/pkg/textutil"
	"github.com/kart-io/docqa/pkg/llm"
)

// DefaultPromptTemplate is the answer prompt. Placeholders: {{history}},
// {{context}}, {{question}}.
const DefaultPromptTemplate = `You are a helpful assistant answering questions about a PDF document.
Use only the provided document excerpts to answer. If the excerpts do not
contain the answer, say so.

Conversation so far:
{{history}}

Document excerpts:
{{context}}

Question: {{question}}

Answer:`

const defaultSystemPrompt = "You answer questions strictly from the supplied document excerpts."

// mockContextChars bounds the excerpt preview embedded in fallback
// answers.
const mockContextChars = 300

// GeneratorConfig configures the Generator.
type GeneratorConfig struct {
	// PromptTemplate overrides DefaultPromptTemplate when non-empty.
	PromptTemplate string
	// SystemPrompt overrides the default system prompt when non-empty.
	SystemPrompt string
}

// Generator produces answers from retrieved passages. When no chat
// provider is configured, or the provider fails, it falls back to a
// canned answer built from the top passages so the service stays
// usable without an API key.
type Generator struct {
	provider llm.ChatProvider
	template string
	system   string
	metrics  *metrics.Metrics
}

// NewGenerator creates a Generator. provider may be nil.
func NewGenerator(provider llm.ChatProvider, config *GeneratorConfig) *Generator {
	if config == nil {
		config = &GeneratorConfig{}
	}
	template := config.PromptTemplate
	if template == "" {
		template = DefaultPromptTemplate
	}
	system := config.SystemPrompt
	if system == "" {
		system = defaultSystemPrompt
	}

	return &Generator{
		provider: provider,
		template: template,
		system:   system,
		metrics:  metrics.Get(),
	}
}

// Generate answers the question from the passages and history. The
// returned mock flag is true when the answer came from the fallback
// path rather than the model.
func (g *Generator) Generate(ctx context.Context, question string, history []Turn, passages []*Passage) (string, bool, error) {
	if g.provider == nil {
		g.metrics.RecordLLMFallback()
		return g.mockAnswer(question, passages), true, nil
	}

	prompt := g.buildPrompt(question, history, passages)

	start := time.Now()
	answer, err := g.provider.Generate(ctx, prompt, g.system)
	g.metrics.RecordLLMCall(time.Since(start), err)
	if err != nil {
		// A cancelled or timed-out request must not be answered at all.
		if ctx.Err() != nil {
			return "", false, err
		}

		// Any other provider failure degrades to the canned answer
		// instead of failing the query.
		zap.S().Warnw("chat provider failed, serving fallback answer",
			"provider", g.provider.Name(),
			"error", err,
		)
		g.metrics.RecordLLMFallback()
		return g.mockAnswer(question, passages), true, nil
	}

	return strings.TrimSpace(answer), false, nil
}

func (g *Generator) buildPrompt(question string, history []Turn, passages []*Passage) string {
	historyText := FormatHistory(history)
	if historyText == "" {
		historyText = "(none)"
	}

	contextText := formatPassages(passages)
	if contextText == "" {
		contextText = "(no matching excerpts)"
	}

	r := strings.NewReplacer(
		"{{history}}", historyText,
		"{{context}}", contextText,
		"{{question}}", question,
	)
	return r.Replace(g.template)
}

func (g *Generator) mockAnswer(question string, passages []*Passage) string {
	if len(passages) == 0 {
		return fmt.Sprintf("No relevant content was found in the document for: %q.", question)
	}

	top := passages[0]
	preview := textutil.TruncateString(strings.TrimSpace(top.Content), mockContextChars)
	return fmt.Sprintf(
		"Regarding %q, based on %s of %s: %s",
		question, top.Page, top.PDFName, preview,
	)
}

func formatPassages(passages []*Passage) string {
	if len(passages) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, p := range passages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("[%s, %s]\n", p.PDFName, p.Page))
		sb.WriteString(strings.TrimSpace(p.Content))
	}
	return sb.String()
}
