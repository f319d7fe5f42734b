package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rankwise/rankwise-api/internal/apperr"
)

// errorBody is the uniform error response shape. Fields is present only
// for validation failures.
type errorBody struct {
	Error  string              `json:"error"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

// HTTPErrorHandler translates errors into structured JSON exactly once, at
// the boundary. Typed *apperr.Error values map to their status and
// message; anything unrecognized is logged and becomes a generic 500 so
// driver errors and stack detail never reach a client.
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ae *apperr.Error
		if errors.As(err, &ae) {
			if ae.Kind == apperr.KindInternal {
				e.Logger.Error(err)
			}
			_ = c.JSON(ae.Status, errorBody{Error: ae.Message, Fields: ae.Fields})
			return
		}

		// Echo's own errors: 404 route misses, 405, oversized bodies.
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg := http.StatusText(he.Code)
			if s, ok := he.Message.(string); ok {
				msg = s
			}
			_ = c.JSON(he.Code, errorBody{Error: msg})
			return
		}

		e.Logger.Error(err)
		_ = c.JSON(http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}
