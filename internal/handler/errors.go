package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/petarceklic/FlightCapacity/internal/auth"
	"github.com/petarceklic/FlightCapacity/internal/models"
	"github.com/petarceklic/FlightCapacity/internal/providers"
	"github.com/petarceklic/FlightCapacity/internal/route"
)

// AvailableEndpoints is reported on unknown paths.
var AvailableEndpoints = []string{
	"GET /health",
	"GET /api/flights?origin=&destination=&date=&adults=",
	"GET /api/flight-status?carrier=&number=&date=",
	"GET /api/flight-capacity?carrier=&number=&date=&origin=&destination=",
}

func (h *FlightHandler) writeError(c echo.Context, err error) error {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.String("query", c.QueryString()),
			zap.Error(err),
		)
	}
	return c.JSON(status, body)
}

func errorResponse(err error) (int, models.ErrorResponse) {
	var (
		validationErr *models.ValidationError
		notFoundErr   *route.NotFoundError
		authErr       *auth.AuthError
		upstreamErr   *providers.UpstreamError
	)

	switch {
	case errors.As(err, &validationErr):
		received := validationErr.Received
		return http.StatusBadRequest, models.ErrorResponse{
			Error:    validationErr.Message,
			Message:  "Expected " + validationErr.Field + " as " + validationErr.Expected,
			Expected: validationErr.Expected,
			Received: &received,
		}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, models.ErrorResponse{
			Error:   "Flight not found",
			Message: notFoundErr.Error(),
		}
	case errors.As(err, &authErr):
		return http.StatusInternalServerError, models.ErrorResponse{
			Error:      "Authentication with flight data provider failed",
			Message:    authErr.Error(),
			StatusCode: authErr.StatusCode,
			Details:    details(authErr.Body),
		}
	case errors.As(err, &upstreamErr):
		status := http.StatusInternalServerError
		if upstreamErr.StatusCode != 0 {
			status = http.StatusBadGateway
		}
		return status, models.ErrorResponse{
			Error:      "Flight data provider request failed",
			Message:    upstreamErr.Error(),
			StatusCode: upstreamErr.StatusCode,
			Details:    details(upstreamErr.Body),
		}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Internal server error",
			Message: err.Error(),
		}
	}
}

// details keeps a provider body verbatim: as JSON when it is JSON, as a
// string otherwise.
func details(body string) any {
	if body == "" {
		return nil
	}
	if json.Valid([]byte(body)) {
		return json.RawMessage(body)
	}
	return body
}

// HTTPErrorHandler renders echo's own errors. Unknown paths list the
// endpoints the service offers.
func HTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
		}

		var writeErr error
		switch code {
		case http.StatusNotFound:
			writeErr = c.JSON(code, models.NotFoundResponse{
				Error:              "Endpoint not found",
				AvailableEndpoints: AvailableEndpoints,
			})
		default:
			if code >= http.StatusInternalServerError {
				logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			writeErr = c.JSON(code, models.ErrorResponse{
				Error:   http.StatusText(code),
				Message: message,
			})
		}
		if writeErr != nil {
			logger.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}
