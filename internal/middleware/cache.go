package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "photolibrary/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
    http.ResponseWriter
    status int
    buf    bytes.Buffer
    size   int64
    limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }
func (cw *captureWriter) Write(b []byte) (int, error) {
    if cw.limit <= 0 || cw.size < cw.limit {
        remain := cw.limit - cw.size
        if cw.limit <= 0 {
            cw.buf.Write(b)
        } else if remain > 0 {
            if int64(len(b)) <= remain {
                cw.buf.Write(b)
            } else {
                cw.buf.Write(b[:remain])
            }
        }
        cw.size += int64(len(b))
    }
    return cw.ResponseWriter.Write(b)
}

// cacheKeyFrom builds a stable cache key from the authenticated user, the
// route template, the path params and the query string.  Every cached
// endpoint here is membership-scoped, so the user id MUST be part of the
// key: two members of different libraries hitting the same route template
// never share an entry, and a non-member can never be served a member's
// cached body.  Routes carrying a libraryId param also fold in that
// library's cache generation, so a bump orphans every entry at once.
func cacheKeyFrom(cfg config.CacheConfig, rdb *redis.Client, c echo.Context) string {
    r := c.Request()
    parts := []string{
        fmt.Sprint(c.Get("user_id")),
        r.Method,
        c.Path(),
    }
    for _, name := range c.ParamNames() {
        parts = append(parts, name, c.Param(name))
    }
    if libID := c.Param("libraryId"); libID != "" {
        ver, err := rdb.Get(r.Context(), libraryVersionKey(cfg.Prefix, libID)).Result()
        if err != nil {
            ver = "0"
        }
        parts = append(parts, "ver", ver)
    }
    parts = append(parts, r.URL.RawQuery)

    tail := strings.Join(parts, ":")
    sum := sha1.Sum([]byte(tail))
    return fmt.Sprintf("%s:%x", cfg.Prefix, sum[:])
}

func libraryVersionKey(prefix, libraryID string) string {
    return prefix + ":ver:library:" + libraryID
}

// InvalidateLibrary advances a library's cache generation so the next read
// on any of its cached listings misses.  The orphaned entries expire on
// their own TTL.  A nil client makes this a no-op.
func InvalidateLibrary(ctx context.Context, rdb *redis.Client, prefix string, libraryID uint64) {
    if rdb == nil {
        return
    }
    _ = rdb.Incr(ctx, libraryVersionKey(prefix, strconv.FormatUint(libraryID, 10))).Err()
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
    hdrJSON, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    total := 4 + 4 + len(hdrJSON) + len(body)
    out := make([]byte, total)
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
    copy(out[8:8+len(hdrJSON)], hdrJSON)
    copy(out[8+len(hdrJSON):], body)
    return out, nil
}

// decodePayload is the inverse of encodePayload.
func decodePayload(raw []byte) (int, http.Header, []byte, bool) {
    if len(raw) < 8 {
        return 0, nil, nil, false
    }
    status := int(binary.BigEndian.Uint32(raw[0:4]))
    hdrLen := int(binary.BigEndian.Uint32(raw[4:8]))
    if len(raw) < 8+hdrLen {
        return 0, nil, nil, false
    }
    var hdr http.Header
    if err := json.Unmarshal(raw[8:8+hdrLen], &hdr); err != nil {
        return 0, nil, nil, false
    }
    return status, hdr, raw[8+hdrLen:], true
}

// ResponseCache returns a middleware that serves successful GET responses
// from Redis for a short TTL.  It must run AFTER JWTAuth so the user id is
// available for the cache key.  A nil Redis client or a disabled config
// turns the middleware into a pass-through.
func ResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if rdb == nil || !cfg.Enabled || !cfg.Methods[c.Request().Method] {
                return next(c)
            }
            key := cacheKeyFrom(cfg, rdb, c)
            ttl := cfg.TTL
            if ttl <= 0 {
                ttl = 30 * time.Second
            }
            maxBody := int64(cfg.MaxBodyBytes)

            // Hit: replay stored status/headers/body.
            if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
                if status, hdr, body, ok := decodePayload(raw); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    if len(body) > 0 {
                        _, _ = c.Response().Write(body)
                    }
                    return nil
                }
            }

            // Miss: capture
            cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
            c.Response().Writer = cw
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            // Oversized bodies are not cached; a truncated entry must never
            // be replayed.
            if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
                hdr := make(http.Header, len(c.Response().Header()))
                for k, vals := range c.Response().Header() {
                    vv := make([]string, len(vals))
                    copy(vv, vals)
                    hdr[k] = vv
                }
                if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
                    _ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
                }
            }
            return nil
        }
    }
}
