package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	WebSocketPath       = "/ws"
	WebSocketHealthPath = "/ws/health"
)

// NewHTTPServer hosts the websocket endpoint next to health and metrics routes.
// Behind the boot server only WebSocketPath and WebSocketHealthPath are mounted.
func NewHTTPServer(ws *Server, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	ws.Register(e)
	health := func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":      "healthy",
			"connections": ws.hub.ConnectionCount(),
		})
	}
	e.GET("/health", health)
	e.GET(WebSocketHealthPath, health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return e
}
