package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/pkg/httputils"
	"github.com/kart-io/docqa/pkg/errors"
)

// Root serves a short service banner.
func (h *Handler) Root(c *gin.Context) {
	httputils.WriteResponse(c, nil, gin.H{
		"service": "docqa",
		"message": "PDF question answering service",
	})
}

// Health reports liveness and the number of tracked uploads.
func (h *Handler) Health(c *gin.Context) {
	httputils.WriteResponse(c, nil, gin.H{
		"status":  "ok",
		"uploads": len(h.service.ListPDFs(c.Request.Context())),
	})
}

// Upload accepts a multipart PDF upload and registers it.
func (h *Handler) Upload(c *gin.Context) {
	// Reject oversized bodies before reading the file part.
	if c.Request.ContentLength > h.maxUploadBytes {
		httputils.WriteResponse(c, errors.ErrFileTooLarge.WithMessage(
			"request exceeds limit of %d bytes", h.maxUploadBytes), nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			httputils.WriteResponse(c, errors.ErrFileTooLarge, nil)
			return
		}
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage("missing file field: %s", err.Error()), nil)
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		httputils.WriteResponse(c, errors.ErrFileTooLarge.WithMessage(
			"file exceeds limit of %d bytes", h.maxUploadBytes), nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage("open upload: %s", err.Error()), nil)
		return
	}
	defer func() { _ = f.Close() }()

	up, err := h.service.Upload(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, up)
}

// List returns all uploads.
func (h *Handler) List(c *gin.Context) {
	uploads := h.service.ListPDFs(c.Request.Context())
	httputils.WriteResponse(c, nil, gin.H{
		"total":   len(uploads),
		"uploads": uploads,
	})
}

// Delete removes an upload by ID.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.DeletePDF(c.Request.Context(), id); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"id": id, "deleted": true})
}
