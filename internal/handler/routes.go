package handler

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, h *FlightHandler, info HealthInfo) {
	e.GET("/health", HealthHandler(info))

	api := e.Group("/api")
	api.GET("/flights", h.Flights)
	api.GET("/flight-status", h.FlightStatus)
	api.GET("/flight-capacity", h.Capacity)
}
