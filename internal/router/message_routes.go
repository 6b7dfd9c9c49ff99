package router

import (
    "github.com/labstack/echo/v4"

    "photolibrary/internal/handler"
    "photolibrary/internal/middleware"
    "photolibrary/internal/realtime"
)

// RegisterMessages registers heart message and comment thread routes.
func RegisterMessages(e *echo.Echo, h *handler.MessageHandler, jwtSecret string) {
    g := e.Group("/messages")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.GET("/library/:libraryId", h.ListHearts)
    g.POST("/library/:libraryId", h.SendHeart)
    g.GET("/photo/:photoId", h.ListComments)
}

// RegisterSocket registers the websocket upgrade endpoint.  Authentication
// happens inside the handler via the token query parameter, so no JWT
// middleware runs here.
func RegisterSocket(e *echo.Echo, h *realtime.SocketHandler) {
    e.GET("/ws", h.Serve)
}
