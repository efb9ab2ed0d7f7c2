package biz

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/errors"
)

func newTestService(t *testing.T, provider *fakeProvider, pages []string) (*QAService, *store.UploadStore) {
	t.Helper()

	uploads, err := store.NewUploadStore(t.TempDir())
	require.NoError(t, err)

	extract := func(path string) ([]string, error) {
		if pages == nil {
			return nil, fmt.Errorf("broken pdf")
		}
		return pages, nil
	}

	var gen *Generator
	if provider != nil {
		gen = NewGenerator(provider, nil)
	} else {
		gen = NewGenerator(nil, nil)
	}

	svc := NewQAService(uploads, NewQueryCache(nil, nil), gen, &ServiceConfig{
		IndexerConfig: &IndexerConfig{CacheSize: 10, Extract: extract},
	})
	return svc, uploads
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc, _ := newTestService(t, nil, []string{"page"})

	_, err := svc.Upload(context.Background(), "notes.txt", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.ErrUnsupportedFileType.Is(err))
}

func TestUploadAcceptsPDF(t *testing.T) {
	svc, uploads := newTestService(t, nil, []string{"page"})

	up, err := svc.Upload(context.Background(), "Report.PDF", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.NotEmpty(t, up.ID)
	assert.Equal(t, 1, uploads.Len())
}

func TestQueryPipeline(t *testing.T) {
	provider := &fakeProvider{answer: "the capital is Paris"}
	svc, _ := newTestService(t, provider, []string{
		"France is a country in Europe.",
		"The capital of France is Paris.",
	})

	ctx := context.Background()
	up, err := svc.Upload(ctx, "france.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	res, err := svc.Query(ctx, &QueryRequest{
		UploadID:  up.ID,
		Question:  "What is the capital of France?",
		SessionID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, "the capital is Paris", res.Answer)
	assert.False(t, res.Cached)
	assert.False(t, res.Mock)
	assert.Equal(t, "s1", res.SessionID)
	require.NotEmpty(t, res.Metadata)
	assert.Equal(t, "france.pdf", res.Metadata[0].PDFName)
	// page 2 matches more query words than page 1
	assert.Equal(t, 2, res.Metadata[0].PageNumber)

	// second identical query is served from cache
	res2, err := svc.Query(ctx, &QueryRequest{
		UploadID:  up.ID,
		Question:  "What is the capital of France?",
		SessionID: "s1",
	})
	require.NoError(t, err)
	assert.True(t, res2.Cached)
	assert.Equal(t, res.Answer, res2.Answer)
}

func TestQueryRecordsConversationHistory(t *testing.T) {
	provider := &fakeProvider{answer: "first answer"}
	svc, _ := newTestService(t, provider, []string{"alpha beta gamma"})

	ctx := context.Background()
	up, err := svc.Upload(ctx, "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "alpha?", SessionID: "s1"})
	require.NoError(t, err)

	// the first exchange is rendered into the second prompt
	provider.answer = "second answer"
	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "beta?", SessionID: "s1"})
	require.NoError(t, err)

	assert.Contains(t, provider.lastPrompt, "User: alpha?")
	assert.Contains(t, provider.lastPrompt, "Assistant: first answer")
	assert.NotContains(t, provider.lastPrompt, "User: beta?\nAssistant")

	h := svc.memory.History("s1")
	require.Len(t, h, 4)
	assert.Equal(t, RoleAssistant, h[3].Role)
	assert.Equal(t, "second answer", h[3].Content)
}

func TestQueryDefaultsSession(t *testing.T) {
	svc, _ := newTestService(t, nil, []string{"content here"})

	ctx := context.Background()
	up, err := svc.Upload(ctx, "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	res, err := svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "content"})
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionID, res.SessionID)
	assert.True(t, res.Mock)
}

func TestQueryUnknownUpload(t *testing.T) {
	svc, _ := newTestService(t, nil, []string{"page"})

	_, err := svc.Query(context.Background(), &QueryRequest{UploadID: "nope", Question: "q"})
	require.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestQueryEmptyQuestion(t *testing.T) {
	svc, _ := newTestService(t, nil, []string{"page"})

	_, err := svc.Query(context.Background(), &QueryRequest{UploadID: "any", Question: "   "})
	require.Error(t, err)
	assert.True(t, errors.ErrBadRequest.Is(err))
}

func TestQueryCancelledContextFails(t *testing.T) {
	provider := &fakeProvider{err: context.Canceled}
	svc, _ := newTestService(t, provider, []string{"alpha content"})

	up, err := svc.Upload(context.Background(), "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "alpha"})
	require.Error(t, err)
	assert.True(t, errors.ErrInternal.Is(err))
}

func TestQueryExtractionFailure(t *testing.T) {
	svc, _ := newTestService(t, nil, nil) // extractor always fails

	ctx := context.Background()
	up, err := svc.Upload(ctx, "bad.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "q"})
	require.Error(t, err)
	assert.True(t, errors.ErrExtraction.Is(err))
}

func TestDeletePDF(t *testing.T) {
	svc, uploads := newTestService(t, nil, []string{"page"})

	ctx := context.Background()
	up, err := svc.Upload(ctx, "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	// build the index so the delete has something to invalidate
	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "page"})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.indexer.CachedCount())

	require.NoError(t, svc.DeletePDF(ctx, up.ID))
	assert.Equal(t, 0, uploads.Len())
	assert.Equal(t, 0, svc.indexer.CachedCount())

	err = svc.DeletePDF(ctx, up.ID)
	require.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestResetSession(t *testing.T) {
	svc, _ := newTestService(t, nil, []string{"page"})

	ctx := context.Background()
	up, err := svc.Upload(ctx, "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "page", SessionID: "s1"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetSession(ctx, "s1"))
	assert.Nil(t, svc.memory.History("s1"))

	err = svc.ResetSession(ctx, "s1")
	require.Error(t, err)
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestStats(t *testing.T) {
	svc, _ := newTestService(t, nil, []string{"page"})

	ctx := context.Background()
	up, err := svc.Upload(ctx, "doc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	_, err = svc.Query(ctx, &QueryRequest{UploadID: up.ID, Question: "page"})
	require.NoError(t, err)

	stats := svc.Stats(ctx)
	assert.Equal(t, 1, stats["uploads"])
	assert.Equal(t, 1, stats["sessions"])
	assert.Contains(t, stats, "query_cache")
	assert.Contains(t, stats, "index_cache")
	assert.Contains(t, stats, "queries")
}
