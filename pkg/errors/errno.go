// Package errors provides business error codes with HTTP status mapping.
//
// Every error exposed by the API carries a stable business code and the
// HTTP status it should be served with. Handlers pass errors to
// httputils.WriteResponse, which recognizes *Errno and renders the
// unified response envelope.
package errors

import (
	"fmt"
	"net/http"
)

// Errno represents a business error with a stable code.
type Errno struct {
	// Code is the business error code (0 = success).
	Code int `json:"code"`

	// HTTP is the HTTP status code this error maps to.
	HTTP int `json:"-"`

	// Message is a human-readable message.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Errno) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Errno) HTTPStatus() int {
	if e.HTTP != 0 {
		return e.HTTP
	}
	if e.Code == 0 {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// WithMessage returns a copy of the Errno with a new message.
// The original is never mutated so predefined errors stay constant.
func (e *Errno) WithMessage(format string, args ...any) *Errno {
	clone := *e
	clone.Message = fmt.Sprintf(format, args...)
	return &clone
}

// Is reports whether target is an *Errno with the same code, so that
// errors.Is works across WithMessage copies.
func (e *Errno) Is(target error) bool {
	t, ok := target.(*Errno)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Predefined errors. Codes follow <HTTP status><sequence>.
var (
	// OK represents success.
	OK = &Errno{Code: 0, HTTP: http.StatusOK, Message: "success"}

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = &Errno{Code: 40001, HTTP: http.StatusBadRequest, Message: "bad request"}

	// ErrUnsupportedFileType indicates the uploaded file is not a PDF.
	ErrUnsupportedFileType = &Errno{Code: 40002, HTTP: http.StatusBadRequest, Message: "only PDF files are allowed"}

	// ErrFileTooLarge indicates the uploaded payload exceeds the limit.
	ErrFileTooLarge = &Errno{Code: 40003, HTTP: http.StatusBadRequest, Message: "file too large"}

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = &Errno{Code: 40401, HTTP: http.StatusNotFound, Message: "resource not found"}

	// ErrTimeout indicates the request took too long to process.
	ErrTimeout = &Errno{Code: 40801, HTTP: http.StatusRequestTimeout, Message: "request timeout"}

	// ErrInternal indicates an unexpected server-side failure.
	ErrInternal = &Errno{Code: 50001, HTTP: http.StatusInternalServerError, Message: "internal server error"}

	// ErrPanic indicates a recovered panic.
	ErrPanic = &Errno{Code: 50002, HTTP: http.StatusInternalServerError, Message: "internal server error (panic)"}

	// ErrExtraction indicates PDF text extraction failed.
	ErrExtraction = &Errno{Code: 50003, HTTP: http.StatusInternalServerError, Message: "failed to extract text from PDF"}
)
