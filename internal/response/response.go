package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body: {status, message, data?, errors?}.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func OK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Status: "success", Message: message, Data: data})
}

func Created(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, Envelope{Status: "success", Data: data})
}

func Error(c echo.Context, code int, message string) error {
	return c.JSON(code, Envelope{Status: "error", Message: message})
}

func BadRequest(c echo.Context, message string) error {
	return Error(c, http.StatusBadRequest, message)
}

func BadRequestErrors(c echo.Context, message string, errs any) error {
	return c.JSON(http.StatusBadRequest, Envelope{Status: "error", Message: message, Errors: errs})
}

func Unauthorized(c echo.Context, message string) error {
	return Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c echo.Context) error {
	return Error(c, http.StatusForbidden, "Forbidden")
}

func NotFound(c echo.Context, message string) error {
	return Error(c, http.StatusNotFound, message)
}

func InternalServerError(c echo.Context) error {
	return Error(c, http.StatusInternalServerError, "Internal Server Error")
}
