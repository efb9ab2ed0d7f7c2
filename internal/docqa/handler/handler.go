// Package handler provides the HTTP handlers for the QA service.
package handler

import (
	"github.com/kart-io/docqa/internal/docqa/biz"
)

// Handler handles HTTP requests for the QA service.
type Handler struct {
	service        biz.Service
	maxUploadBytes int64
	queryTimeout   int64 // seconds
}

// Config holds handler limits.
type Config struct {
	// MaxUploadBytes bounds the accepted PDF size. Zero means the
	// default of 10 MiB.
	MaxUploadBytes int64
	// QueryTimeoutSeconds bounds query processing. Zero means 60.
	QueryTimeoutSeconds int64
}

// New creates a Handler.
func New(service biz.Service, config *Config) *Handler {
	if config == nil {
		config = &Config{}
	}
	maxUpload := config.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	timeout := config.QueryTimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}

	return &Handler{
		service:        service,
		maxUploadBytes: maxUpload,
		queryTimeout:   timeout,
	}
}
