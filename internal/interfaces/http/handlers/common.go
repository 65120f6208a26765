// Common helpers shared by HTTP handlers.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// respondError maps application errors onto HTTP status codes and a
// structured body. Internal failures are masked so stack details never
// leak to clients.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := code.HTTPStatus()

	resp := ErrorResponse{
		Code:    code.String(),
		Message: err.Error(),
	}
	if appErr, ok := err.(*errors.AppError); ok {
		resp.Message = appErr.Message
		resp.Detail = appErr.Detail
	}
	if status == http.StatusInternalServerError {
		resp.Message = "internal server error"
		resp.Detail = ""
	}

	c.AbortWithStatusJSON(status, resp)
}

// respondBadRequest reports a malformed request body.
func respondBadRequest(c *gin.Context, err error) {
	respondError(c, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
}
