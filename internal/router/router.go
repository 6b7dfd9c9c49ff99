// Package router wires HTTP routes to their handlers, grouped by area.
package router

import (
    "github.com/labstack/echo/v4"

    "photolibrary/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/health", handler.Health)
}
