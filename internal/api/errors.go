package api

import (
	stderrors "errors"
	"net/http"
	"strings"

	"business-finder/internal/common/errors"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// StatusFor maps an error code to the HTTP status returned for it.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeMissingCredential, errors.ErrCodeProviderUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeLocationNotFound, errors.ErrCodeResultsNotFound:
		return http.StatusNotFound
	case errors.ErrCodeSearchFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var status int
	var body ErrorResponse

	var httpErr *echo.HTTPError
	if stderrors.As(err, &httpErr) {
		status = httpErr.Code
		body = ErrorResponse{
			Code:    strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_")),
			Message: http.StatusText(status),
		}
	} else {
		stdErr := errors.Normalize(err)
		status = StatusFor(stdErr.Code)
		body = ErrorResponse{
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
			Details: stdErr.Details,
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"method": c.Request().Method,
			"path":   c.Path(),
			"status": status,
			"error":  err.Error(),
		})
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}
