package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/pkg/httputils"
	"github.com/kart-io/docqa/pkg/errors"
)

// QueryRequest is the query endpoint payload, accepted as JSON or
// form fields.
type QueryRequest struct {
	UploadID  string `json:"upload_id" form:"upload_id" binding:"required"`
	Question  string `json:"question" form:"question" binding:"required"`
	SessionID string `json:"session_id" form:"session_id"`
}

// Query answers a question against an uploaded PDF.
func (h *Handler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage("%s", err.Error()), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Duration(h.queryTimeout)*time.Second)
	defer cancel()

	result, err := h.service.Query(ctx, &biz.QueryRequest{
		UploadID:  req.UploadID,
		Question:  req.Question,
		SessionID: req.SessionID,
	})
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			httputils.WriteResponse(c, errors.ErrTimeout.WithMessage(
				"query took longer than %ds", h.queryTimeout), nil)
			return
		}
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, result)
}

// ResetSession drops a session's conversation history.
func (h *Handler) ResetSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := h.service.ResetSession(c.Request.Context(), sessionID); err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, gin.H{"session_id": sessionID, "reset": true})
}

// Stats reports service counters and cache state.
func (h *Handler) Stats(c *gin.Context) {
	httputils.WriteResponse(c, nil, h.service.Stats(c.Request.Context()))
}
