// Package biz implements the question answering pipeline: PDF
// indexing, keyword retrieval, answer generation, per-session
// conversation memory and query result caching.
package biz
