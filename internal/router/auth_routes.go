package router

import (
    "github.com/labstack/echo/v4"

    "photolibrary/internal/handler"
    "photolibrary/internal/middleware"
)

// RegisterAuth registers authentication routes.  Register, login and
// refresh work without a session; me, profile and logout require a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)

    protected := e.Group("/auth")
    protected.Use(middleware.JWTAuth(jwtSecret))
    protected.GET("/me", a.Me)
    protected.PUT("/profile", a.UpdateProfile)
    protected.POST("/logout", a.Logout)
}
