package biz

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/errors"
)

// DefaultSessionID is used when a query names no session.
const DefaultSessionID = "default"

// QueryRequest is one question against an uploaded PDF.
type QueryRequest struct {
	// UploadID identifies the PDF to query.
	UploadID string
	// Question is the user's question.
	Question string
	// SessionID selects the conversation history. Empty means the
	// default session.
	SessionID string
}

// QueryResult is the answer to a query.
type QueryResult struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Metadata lists the passages the answer was grounded on.
	Metadata []*Passage `json:"metadata"`
	// SessionID is the session the query ran under.
	SessionID string `json:"session_id"`
	// Cached is true when the result was served from the query cache.
	Cached bool `json:"cached"`
	// Mock is true when the answer came from the fallback path.
	Mock bool `json:"mock"`
}

// Service is the question answering service surface.
type Service interface {
	// Upload stores a PDF and returns its registry entry.
	Upload(ctx context.Context, filename string, r io.Reader) (*store.Upload, error)
	// Query answers a question against an uploaded PDF.
	Query(ctx context.Context, req *QueryRequest) (*QueryResult, error)
	// ListPDFs returns all uploads.
	ListPDFs(ctx context.Context) []*store.Upload
	// DeletePDF removes an upload, its file and its cached index.
	DeletePDF(ctx context.Context, id string) error
	// ResetSession drops a session's conversation history.
	ResetSession(ctx context.Context, sessionID string) error
	// Stats reports service counters and cache state.
	Stats(ctx context.Context) map[string]interface{}
}

// QAService composes the Indexer, Retriever, Generator, MemoryManager
// and QueryCache into the full pipeline.
type QAService struct {
	uploads   *store.UploadStore
	indexer   *Indexer
	retriever *Retriever
	generator *Generator
	memory    *MemoryManager
	cache     *QueryCache
	metrics   *metrics.Metrics
}

// ServiceConfig bundles the component configs.
type ServiceConfig struct {
	IndexerConfig   *IndexerConfig
	RetrieverConfig *RetrieverConfig
	GeneratorConfig *GeneratorConfig
}

// NewQAService creates the service.
func NewQAService(uploads *store.UploadStore, cache *QueryCache, generator *Generator, config *ServiceConfig) *QAService {
	if config == nil {
		config = &ServiceConfig{}
	}

	return &QAService{
		uploads:   uploads,
		indexer:   NewIndexer(config.IndexerConfig),
		retriever: NewRetriever(config.RetrieverConfig),
		generator: generator,
		memory:    NewMemoryManager(),
		cache:     cache,
		metrics:   metrics.Get(),
	}
}

// Upload validates the file name and registers the PDF.
func (s *QAService) Upload(ctx context.Context, filename string, r io.Reader) (*store.Upload, error) {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return nil, errors.ErrUnsupportedFileType
	}

	up, err := s.uploads.Add(filename, r)
	if err != nil {
		return nil, errors.ErrInternal.WithMessage("store upload: %s", err.Error())
	}

	s.metrics.RecordUpload()
	zap.S().Infow("pdf uploaded", "id", up.ID, "filename", up.Filename, "size", up.Size)
	return up, nil
}

// Query runs the pipeline: cache lookup, index, retrieve, generate,
// then memory and cache updates.
func (s *QAService) Query(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.metrics.RecordQuery(false, errors.ErrBadRequest)
		return nil, errors.ErrBadRequest.WithMessage("question must not be empty")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	up, ok := s.uploads.Get(req.UploadID)
	if !ok {
		s.metrics.RecordQuery(false, errors.ErrNotFound)
		return nil, errors.ErrNotFound.WithMessage("unknown upload id %q", req.UploadID)
	}

	if cached, ok := s.cache.Get(ctx, question, up.ID, sessionID); ok {
		s.metrics.RecordQuery(true, nil)
		out := *cached
		out.Cached = true
		return &out, nil
	}

	idx, err := s.indexer.Index(up.Path)
	if err != nil {
		s.metrics.RecordQuery(false, err)
		return nil, errors.ErrExtraction.WithMessage("index %s: %s", up.Filename, err.Error())
	}

	passages := s.retriever.Retrieve(idx, up.Filename, question)

	// History is snapshotted before the new turn so the prompt does
	// not contain the question twice.
	history := s.memory.History(sessionID)
	s.memory.Append(sessionID, RoleUser, question)

	answer, mock, err := s.generator.Generate(ctx, question, history, passages)
	if err != nil {
		s.metrics.RecordQuery(false, err)
		return nil, errors.ErrInternal.WithMessage("generate answer: %s", err.Error())
	}

	s.memory.Append(sessionID, RoleAssistant, answer)

	result := &QueryResult{
		Answer:    answer,
		Metadata:  passages,
		SessionID: sessionID,
		Mock:      mock,
	}
	s.cache.Set(ctx, question, up.ID, sessionID, result)
	s.metrics.RecordQuery(false, nil)

	return result, nil
}

// ListPDFs returns all uploads, oldest first.
func (s *QAService) ListPDFs(ctx context.Context) []*store.Upload {
	return s.uploads.List()
}

// DeletePDF removes the upload, its backing file and its cached index.
// Cached query results for the upload age out of the LFU tier; they
// are keyed by upload ID so they can never serve another document.
func (s *QAService) DeletePDF(ctx context.Context, id string) error {
	up, ok := s.uploads.Remove(id)
	if !ok {
		return errors.ErrNotFound.WithMessage("unknown upload id %q", id)
	}

	s.indexer.Invalidate(up.Path)
	s.metrics.RecordDelete()
	zap.S().Infow("pdf deleted", "id", id, "filename", up.Filename)
	return nil
}

// ResetSession drops the session's conversation history.
func (s *QAService) ResetSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	if !s.memory.Reset(sessionID) {
		return errors.ErrNotFound.WithMessage("unknown session %q", sessionID)
	}
	zap.S().Infow("session reset", "session_id", sessionID)
	return nil
}

// Stats reports service counters and cache state.
func (s *QAService) Stats(ctx context.Context) map[string]interface{} {
	stats := s.metrics.Stats()
	stats["query_cache"] = s.cache.Stats()
	stats["index_cache"] = map[string]interface{}{
		"entries": s.indexer.CachedCount(),
	}
	stats["uploads"] = s.uploads.Len()
	stats["sessions"] = len(s.memory.Sessions())
	return stats
}

var _ Service = (*QAService)(nil)
