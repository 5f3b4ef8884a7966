package response

import (
	apperr "backoffice/pkg/errors"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Code       string      `json:"code,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError renders err with the status of its code. Untyped errors are internal.
func FromError(err error) (int, Response) {
	typed := apperr.As(err)
	if typed == nil {
		meta := apperr.MetadataFor(apperr.CodeInternal)
		return meta.HTTPStatus, Response{
			Status:     "error",
			StatusCode: meta.HTTPStatus,
			Error:      meta.PublicMessage,
			Code:       string(apperr.CodeInternal),
		}
	}
	meta := apperr.MetadataFor(typed.Code())
	msg := typed.Message()
	if msg == "" {
		msg = meta.PublicMessage
	}
	return meta.HTTPStatus, Response{
		Status:     "error",
		StatusCode: meta.HTTPStatus,
		Error:      msg,
		Code:       string(typed.Code()),
		Details:    typed.Details(),
	}
}
