package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "photolibrary/internal/utils" // shared token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the authenticated user id into the request context under
// "user_id".  Verification goes through utils.ParseAccessToken, the same
// path the websocket handshake uses, so both surfaces accept and reject
// credentials identically.  Verification fails closed: missing, malformed,
// expired and badly signed tokens all produce 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            uid, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            c.Set("user_id", uid)
            return next(c)
        }
    }
}
