package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medassist/assistant-api/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError maps an application error onto an HTTP status and
// a JSON error body. Insufficient stock errors carry the medication
// and remaining quantity as details.
func RespondWithError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	label := "internal"
	switch code {
	case apperrors.ErrNotFound:
		status = http.StatusNotFound
		label = "not_found"
	case apperrors.ErrValidation:
		status = http.StatusBadRequest
		label = "validation"
	case apperrors.ErrUnauthorized:
		status = http.StatusUnauthorized
		label = "unauthorized"
	case apperrors.ErrForbidden:
		status = http.StatusForbidden
		label = "forbidden"
	case apperrors.ErrConflict:
		status = http.StatusConflict
		label = "conflict"
	case apperrors.ErrInsufficientStock:
		status = http.StatusConflict
		label = "insufficient_stock"
	case apperrors.ErrStoreUnavailable:
		status = http.StatusServiceUnavailable
		label = "store_unavailable"
	}

	message := "internal server error"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && status != http.StatusInternalServerError {
		message = appErr.Message
	}

	respErr := &Error{Code: label, Message: message}
	if stock, ok := apperrors.StockDetails(err); ok {
		respErr.Details = stock
	}

	c.JSON(status, Response{
		Success: false,
		Error:   respErr,
	})
}
