package router

import (
    "github.com/labstack/echo/v4"

    "photolibrary/internal/handler"
    "photolibrary/internal/middleware"
)

// RegisterProfile registers the avatar upload route.
func RegisterProfile(e *echo.Echo, h *handler.ProfileHandler, jwtSecret string) {
    g := e.Group("/profile")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.POST("/photo", h.UploadPhoto)
}
