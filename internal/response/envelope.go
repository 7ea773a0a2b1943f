package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/grantdesk/internal/validate"
)

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// NewMeta computes totalPages = ceil(total/limit).
func NewMeta(page validate.Page, total int64) *Meta {
	var pages int64
	if page.Limit > 0 {
		pages = (total + int64(page.Limit) - 1) / int64(page.Limit)
	}
	return &Meta{Page: page.Page, Limit: page.Limit, Total: total, TotalPages: pages}
}

// Envelope is the uniform response body.
type Envelope struct {
	Success bool                  `json:"success"`
	Data    interface{}           `json:"data,omitempty"`
	Meta    *Meta                 `json:"meta,omitempty"`
	Error   string                `json:"error,omitempty"`
	Details []validate.FieldError `json:"details,omitempty"`
}

// Success writes {success: true, data}.
func Success(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Data: data})
}

// OK writes a 200 success envelope.
func OK(c echo.Context, data interface{}) error {
	return Success(c, http.StatusOK, data)
}

// Created writes a 201 success envelope.
func Created(c echo.Context, data interface{}) error {
	return Success(c, http.StatusCreated, data)
}

// Paginated writes a 200 success envelope with pagination meta.
func Paginated(c echo.Context, data interface{}, meta *Meta) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

// Fail writes {success: false, error, details?}.
func Fail(c echo.Context, status int, message string, details ...validate.FieldError) error {
	return c.JSON(status, Envelope{Success: false, Error: message, Details: details})
}
