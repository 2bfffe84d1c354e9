package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketledger/domain"
	"github.com/x-xyz/marketledger/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

// ErrorBody is the data of a failed response, Code is empty for failures
// without a reason
type ErrorBody struct {
	Message string        `json:"message"`
	Code    domain.Code   `json:"code,omitempty"`
	Detail  *domain.Error `json:"detail,omitempty"`
}

// StatusOf maps an error to its http status
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnrecognized),
		errors.Is(err, domain.ErrBadParamInput),
		errors.Is(err, domain.ErrInvalidAddress),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, query.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrState), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTiming):
		return http.StatusLocked
	case errors.Is(err, domain.ErrOverflow):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// MakeErrorResp writes err with the status it maps to
func MakeErrorResp(c echo.Context, err error) error {
	return MakeJsonResp(c, StatusOf(err), err)
}

func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		body := ErrorBody{Message: err.Error()}
		var e *domain.Error
		if errors.As(err, &e) {
			body.Code = e.Code
			body.Detail = e
		} else if errors.Is(err, domain.ErrUnrecognized) {
			body.Message = domain.ErrUnrecognized.Error()
		} else if status >= http.StatusInternalServerError {
			body.Message = domain.ErrInternalServerError.Error()
		}
		data = body
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
