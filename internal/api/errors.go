package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/ggufscope/pkg/gguf"
)

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Stage   string `json:"stage,omitempty"`
	Index   *int64 `json:"index,omitempty"`
	Key     string `json:"key,omitempty"`
	Offset  uint64 `json:"offset,omitempty"`
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, map[string]any{
		"error": ErrorBody{Message: msg, Type: errType},
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

// writeParseError reports a failed parse as 422 with the failing stage.
func writeParseError(c *echo.Context, err error) error {
	body := ErrorBody{Message: err.Error(), Type: gguf.ErrorKind(err)}
	if body.Type == "" {
		body.Type = "parse_error"
	}
	var perr *gguf.ParseError
	if errors.As(err, &perr) {
		body.Stage = perr.Stage.String()
		body.Key = perr.Key
		body.Offset = perr.Offset
		if perr.Index >= 0 {
			idx := perr.Index
			body.Index = &idx
		}
	}
	return writeJSON(c, http.StatusUnprocessableEntity, map[string]any{"error": body})
}
