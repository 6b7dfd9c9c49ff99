package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "photolibrary/internal/config"
    "photolibrary/internal/handler"
    "photolibrary/internal/middleware"
)

// RegisterPhotos registers photo routes.  The two list endpoints sit behind
// the response cache; uploads and deletes bypass it.
func RegisterPhotos(e *echo.Echo, h *handler.PhotoHandler, jwtSecret string, cacheCfg config.CacheConfig, rdb *redis.Client) {
    g := e.Group("/photos")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.POST("", h.Upload)
    g.DELETE("/:id", h.Delete)

    cached := middleware.ResponseCache(cacheCfg, rdb)
    g.GET("/library/:libraryId", h.List, cached)
    g.GET("/library/:libraryId/highlights", h.Highlights, cached)
}
