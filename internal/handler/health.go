package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/petarceklic/FlightCapacity/internal/models"
)

type HealthInfo struct {
	Service     string
	Environment string
	APIBaseURL  string
}

func HealthHandler(info HealthInfo) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:      "ok",
			Service:     info.Service,
			Environment: info.Environment,
			APIBaseURL:  info.APIBaseURL,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
