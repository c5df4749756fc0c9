package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONSuccess writes a 200 envelope with the given payload.
func JSONSuccess(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Status:  http.StatusOK,
		Message: "ok",
		Data:    data,
	})
}

// JSONList writes a 200 envelope with rows and a total count.
func JSONList(c echo.Context, rows interface{}, total int64) error {
	return JSONSuccess(c, ListDataResponse{Rows: rows, Total: total})
}

// JSONError maps an error to its HTTP representation. AppError and
// validation errors keep their status and detail, everything else
// becomes an opaque 500.
func JSONError(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, APIResponse{
			Status:  appErr.Status,
			Message: appErr.Message,
		})
	}

	var valErrs ValidationErrors
	if errors.As(err, &valErrs) {
		return c.JSON(http.StatusBadRequest, APIResponse{
			Status:  http.StatusBadRequest,
			Message: "validation failed",
			Data:    []ValidationError(valErrs),
		})
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return c.JSON(echoErr.Code, APIResponse{
			Status:  echoErr.Code,
			Message: http.StatusText(echoErr.Code),
		})
	}

	return c.JSON(http.StatusInternalServerError, APIResponse{
		Status:  http.StatusInternalServerError,
		Message: "internal server error",
	})
}
