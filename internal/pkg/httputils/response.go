// Package httputils provides HTTP utility functions.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/docqa/pkg/errors"
	"github.com/kart-io/docqa/pkg/middleware"
	"github.com/kart-io/docqa/pkg/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	requestID := middleware.GetRequestID(c)

	if err != nil {
		var resp *response.Response
		if errno, ok := err.(*errors.Errno); ok {
			resp = response.Err(errno)
		} else {
			resp = response.Err(errors.ErrInternal.WithMessage("%s", err.Error()))
		}
		c.JSON(resp.HTTPStatus(), resp.WithRequestID(requestID))
		return
	}

	// data can be a pre-built *response.Response or raw data
	if resp, ok := data.(*response.Response); ok {
		c.JSON(resp.HTTPStatus(), resp.WithRequestID(requestID))
		return
	}

	resp := response.Success(data)
	c.JSON(resp.HTTPStatus(), resp.WithRequestID(requestID))
}
