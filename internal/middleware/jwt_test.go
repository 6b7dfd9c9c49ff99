package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "photolibrary/internal/utils"
)

func TestJWTAuth(t *testing.T) {
    const secret = "test-secret"
    e := echo.New()
    handler := func(c echo.Context) error {
        return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id")})
    }
    mw := JWTAuth(secret)(handler)

    call := func(authHeader string) *httptest.ResponseRecorder {
        req := httptest.NewRequest(http.MethodGet, "/", nil)
        if authHeader != "" {
            req.Header.Set("Authorization", authHeader)
        }
        rec := httptest.NewRecorder()
        c := e.NewContext(req, rec)
        if err := mw(c); err != nil {
            t.Fatalf("middleware returned error: %v", err)
        }
        return rec
    }

    tok, err := utils.NewAccessToken(secret, 7, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }
    if rec := call("Bearer " + tok.Token); rec.Code != http.StatusOK {
        t.Errorf("valid token status = %d, want 200", rec.Code)
    }

    if rec := call(""); rec.Code != http.StatusUnauthorized {
        t.Errorf("missing header status = %d, want 401", rec.Code)
    }
    if rec := call("Bearer nonsense"); rec.Code != http.StatusUnauthorized {
        t.Errorf("garbage token status = %d, want 401", rec.Code)
    }
    if rec := call(tok.Token); rec.Code != http.StatusUnauthorized {
        t.Errorf("missing Bearer prefix status = %d, want 401", rec.Code)
    }

    other, err := utils.NewAccessToken("other-secret", 7, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }
    if rec := call("Bearer " + other.Token); rec.Code != http.StatusUnauthorized {
        t.Errorf("wrong secret status = %d, want 401", rec.Code)
    }
}
