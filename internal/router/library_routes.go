package router

import (
    "github.com/labstack/echo/v4"

    "photolibrary/internal/handler"
    "photolibrary/internal/middleware"
)

// RegisterLibraries registers library management routes.  All of them
// require authentication.
func RegisterLibraries(e *echo.Echo, h *handler.LibraryHandler, jwtSecret string) {
    g := e.Group("/libraries")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.POST("", h.Create)
    g.POST("/join", h.Join)
    g.GET("/my-libraries", h.MyLibraries)
    g.GET("/:id", h.Get)
    g.POST("/:id/mark-welcome-seen", h.MarkWelcomeSeen)
    g.DELETE("/:id/members/:memberId", h.RemoveMember)
}
