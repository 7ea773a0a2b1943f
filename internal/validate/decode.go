package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// MaxBodyBytes bounds how much of a request body is read.
const MaxBodyBytes = 1 << 20

// DecodeJSON unmarshals body into dst. Unparseable input yields
// ErrInvalidJSON; well-formed JSON with a wrongly typed field yields Errors
// naming that field.
func DecodeJSON(body []byte, dst interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 || !json.Valid(body) {
		return ErrInvalidJSON
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			var out Errors
			out.Add(typeErr.Field, fmt.Sprintf("%s must be of type %s", fieldOrBody(typeErr.Field), typeErr.Type))
			return out
		}
		return ErrInvalidJSON
	}
	return nil
}

func fieldOrBody(field string) string {
	if field == "" {
		return "request body"
	}
	return field
}

// ReadBody reads the request body up to MaxBodyBytes.
func ReadBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, MaxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxBodyBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Request body too large")
	}
	return body, nil
}

// Bind reads, decodes and validates a full request body into dst.
func Bind(c echo.Context, dst interface{}) error {
	body, err := ReadBody(c)
	if err != nil {
		return err
	}
	if err := DecodeJSON(body, dst); err != nil {
		return err
	}
	return Default().Struct(dst)
}
