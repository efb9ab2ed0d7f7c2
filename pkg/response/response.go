// Package response provides unified API response structures.
// All endpoints return the same envelope so clients can parse
// success and error payloads uniformly.
package response

import (
	"net/http"

	"github.com/kart-io/docqa/pkg/errors"
)

// Response is the unified API response structure.
type Response struct {
	// Code is the business error code (0 = success)
	Code int `json:"code"`

	// Message is a human-readable message
	Message string `json:"message"`

	// Data contains the response payload (nil for errors)
	Data interface{} `json:"data,omitempty"`

	// RequestID is the unique request identifier for tracing
	RequestID string `json:"request_id,omitempty"`
}

// Success creates a successful response with data.
func Success(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// SuccessWithMessage creates a successful response with a custom message.
func SuccessWithMessage(message string, data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: message,
		Data:    data,
	}
}

// Err creates an error response from an Errno.
func Err(e *errors.Errno) *Response {
	if e == nil {
		return Success(nil)
	}
	return &Response{
		Code:    e.Code,
		Message: e.Message,
	}
}

// WithRequestID adds the request ID to the response.
func (r *Response) WithRequestID(requestID string) *Response {
	r.RequestID = requestID
	return r
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Code == 0
}

// HTTPStatus returns the HTTP status code matching the business code.
func (r *Response) HTTPStatus() int {
	if r.Code == 0 {
		return http.StatusOK
	}
	switch {
	case r.Code >= 40000 && r.Code < 41000:
		// 4xxYY codes carry their status in the prefix.
		return r.Code / 100
	case r.Code >= 50000 && r.Code < 51000:
		return r.Code / 100
	default:
		return http.StatusInternalServerError
	}
}
