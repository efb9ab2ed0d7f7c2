package biz

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kart-io/docqa/internal/docqa/metrics"
	"github.com/kart-io/docqa/pkg/cache"
	"github.com/kart-io/docqa/pkg/pdf"
)

// DocumentIndex is the in-memory index for one PDF: the page texts,
// pre-lowercased for matching.
type DocumentIndex struct {
	// Path is the file the index was built from.
	Path string
	// Pages holds the extracted text per page, index 0 is page 1.
	Pages []string
	// lowered mirrors Pages, lowercased once at build time.
	lowered []string
}

// ExtractFunc extracts per-page text from a PDF file.
type ExtractFunc func(path string) ([]string, error)

// IndexerConfig configures the Indexer.
type IndexerConfig struct {
	// CacheSize bounds the number of indexed PDFs kept in memory.
	CacheSize int
	// Extract overrides the PDF text extraction, used in tests.
	Extract ExtractFunc
}

// Indexer builds and caches document indexes. Indexes for the least
// frequently queried PDFs are evicted when the cache is full.
type Indexer struct {
	cache   *cache.LFU[string, *DocumentIndex]
	extract ExtractFunc
	metrics *metrics.Metrics

	mu sync.Mutex
}

// NewIndexer creates an Indexer.
func NewIndexer(config *IndexerConfig) *Indexer {
	if config == nil {
		config = &IndexerConfig{}
	}
	size := config.CacheSize
	if size <= 0 {
		size = 10
	}
	extract := config.Extract
	if extract == nil {
		extract = pdf.ExtractPages
	}

	return &Indexer{
		cache:   cache.NewLFU[string, *DocumentIndex](size),
		extract: extract,
		metrics: metrics.Get(),
	}
}

// Index returns the index for path, building it on first use. The
// outer lock keeps concurrent requests for the same PDF from
// extracting twice.
func (i *Indexer) Index(path string) (*DocumentIndex, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if idx, ok := i.cache.Get(path); ok {
		return idx, nil
	}

	pages, err := i.extract(path)
	if err != nil {
		i.metrics.RecordExtractError()
		return nil, err
	}

	lowered := make([]string, len(pages))
	for n, p := range pages {
		lowered[n] = strings.ToLower(p)
	}

	idx := &DocumentIndex{
		Path:    path,
		Pages:   pages,
		lowered: lowered,
	}
	i.cache.Set(path, idx)

	zap.S().Infow("pdf indexed", "path", path, "pages", len(pages))
	return idx, nil
}

// Invalidate drops the cached index for path, if any.
func (i *Indexer) Invalidate(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cache.Del(path)
}

// CachedCount returns the number of indexes currently cached.
func (i *Indexer) CachedCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cache.Len()
}
