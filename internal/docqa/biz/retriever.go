package biz

import (
	"fmt"
	"sort"

	"github.com/kart-io/docqa/internal/pkg/textutil"
)

// Passage is one retrieved page with its match score.
type Passage struct {
	// Content is the page text.
	Content string `json:"content"`
	// PDFName is the original file name of the source document.
	PDFName string `json:"pdf_name"`
	// Page is a human-readable page label, e.g. "Page 3".
	Page string `json:"page"`
	// PageNumber is the 1-based page number.
	PageNumber int `json:"page_number"`
	// Score is the number of query words found on the page.
	Score int `json:"score"`
}

// RetrieverConfig configures the Retriever.
type RetrieverConfig struct {
	// TopK bounds the number of passages returned per query.
	TopK int
}

// Retriever scores pages against the query words and returns the
// best matches.
type Retriever struct {
	topK int
}

// NewRetriever creates a Retriever.
func NewRetriever(config *RetrieverConfig) *Retriever {
	if config == nil {
		config = &RetrieverConfig{}
	}
	topK := config.TopK
	if topK <= 0 {
		topK = 10
	}
	return &Retriever{topK: topK}
}

// Retrieve scores every page of idx against the query and returns up
// to TopK passages ordered by descending score. Pages that match no
// query word are dropped. Ties keep page order, so the sort must be
// stable.
func (r *Retriever) Retrieve(idx *DocumentIndex, pdfName, query string) []*Passage {
	words := textutil.Tokenize(query)
	if len(words) == 0 {
		return nil
	}

	passages := make([]*Passage, 0, len(idx.Pages))
	for n, lowered := range idx.lowered {
		score := textutil.Score(lowered, words)
		if score <= 0 {
			continue
		}
		passages = append(passages, &Passage{
			Content:    idx.Pages[n],
			PDFName:    pdfName,
			Page:       fmt.Sprintf("Page %d", n+1),
			PageNumber: n + 1,
			Score:      score,
		})
	}

	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	if len(passages) > r.topK {
		passages = passages[:r.topK]
	}
	return passages
}
