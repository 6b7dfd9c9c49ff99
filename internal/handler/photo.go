package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "photolibrary/internal/middleware"
    "photolibrary/internal/model"
    "photolibrary/internal/queue"
    "photolibrary/internal/repository"
    queuepub "photolibrary/internal/service"
    "photolibrary/internal/storage"
)

// maxPhotoBytes caps library photo uploads at 10 MB; avatars are smaller.
const maxPhotoBytes = 10 << 20

// maxMultipartOverhead is the slack allowed on top of the file cap for
// boundaries and the other form fields when checking Content-Length before
// the body is parsed.
const maxMultipartOverhead = 64 << 10

// PhotoHandler serves photo upload, listing and deletion.  Store may be nil
// when the blob store is not configured; uploads are then refused.  Cache
// may be nil; writes then skip listing invalidation.
type PhotoHandler struct {
    Photos      *repository.PhotoRepo
    Members     *repository.MemberRepo
    Libraries   *repository.LibraryRepo
    Users       *repository.UserRepo
    Store       storage.ObjectStore
    Cache       *redis.Client
    CachePrefix string
}

func NewPhotoHandler(p *repository.PhotoRepo, m *repository.MemberRepo, l *repository.LibraryRepo, u *repository.UserRepo, s storage.ObjectStore, rdb *redis.Client, cachePrefix string) *PhotoHandler {
    return &PhotoHandler{Photos: p, Members: m, Libraries: l, Users: u, Store: s, Cache: rdb, CachePrefix: cachePrefix}
}

// Upload stores the multipart "image" file in the blob store and persists a
// photo row pointing at the resulting URL.  The size cap is checked before
// any bytes travel to the store.
func (h *PhotoHandler) Upload(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    // Declared-length check before the multipart body gets buffered; the
    // exact per-file cap is enforced on the part size below.
    if c.Request().ContentLength > maxPhotoBytes+maxMultipartOverhead {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image exceeds the 10 MB limit"})
    }

    libID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("libraryId")), 10, 64)
    if err != nil || libID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "libraryId is required"})
    }
    file, err := c.FormFile("image")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
    }
    if file.Size > maxPhotoBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "image exceeds the 10 MB limit"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    ok, err := h.Members.IsMember(ctx, libID, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this library"})
    }

    if h.Store == nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload service not configured"})
    }
    src, err := file.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "image file is required"})
    }
    defer func() { _ = src.Close() }()

    contentType := file.Header.Get("Content-Type")
    url, err := h.Store.Upload(ctx, "photos", src, file.Size, contentType)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed: " + err.Error()})
    }

    var description *string
    if d := strings.TrimSpace(c.FormValue("description")); d != "" {
        description = &d
    }
    isHighlight := false
    if v := strings.TrimSpace(c.FormValue("isHighlight")); v != "" {
        isHighlight, _ = strconv.ParseBool(v)
    }

    detail, err := h.Photos.Create(ctx, &model.Photo{
        LibraryID:   libID,
        UserID:      uid,
        ImageURL:    url,
        Description: description,
        IsHighlight: isHighlight,
    })
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save photo failed"})
    }
    _ = h.Libraries.Touch(ctx, libID)
    middleware.InvalidateLibrary(ctx, h.Cache, h.CachePrefix, libID)

    if lib, lerr := h.Libraries.GetByID(ctx, libID); lerr == nil {
        if u, uerr := h.Users.GetByID(ctx, uid); uerr == nil {
            // Fire and forget; broker problems never fail the upload.
            _ = queuepub.PublishActivity(c.Request().Context(), queue.ActivityEvent{
                Type:        queue.TypePhotoUploaded,
                LibraryID:   libID,
                LibraryName: lib.Name,
                ActorID:     uid,
                ActorName:   u.Username,
                PhotoID:     detail.ID,
                OccurredAt:  time.Now().UTC().Format(time.RFC3339),
            })
        }
    }

    return c.JSON(http.StatusCreated, echo.Map{"photo": detail})
}

// List returns a library's photos, newest first.
func (h *PhotoHandler) List(c echo.Context) error {
    return h.list(c, false)
}

// Highlights returns only photos flagged as highlights.
func (h *PhotoHandler) Highlights(c echo.Context) error {
    return h.list(c, true)
}

func (h *PhotoHandler) list(c echo.Context, highlightsOnly bool) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    libID, ok := parseID(c, "libraryId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    member, err := h.Members.IsMember(ctx, libID, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !member {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this library"})
    }

    photos, err := h.Photos.ListByLibrary(ctx, libID, highlightsOnly)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if photos == nil {
        photos = []*repository.PhotoDetail{}
    }
    return c.JSON(http.StatusOK, echo.Map{"photos": photos})
}

// Delete removes a photo and every comment on it.  Only the uploader may
// delete.
func (h *PhotoHandler) Delete(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    photoID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid photo id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    libraryID, err := h.Photos.DeleteCascade(ctx, photoID, uid)
    switch {
    case err == nil:
    case errors.Is(err, repository.ErrPhotoNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "only the uploader can delete this photo"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
    }
    middleware.InvalidateLibrary(ctx, h.Cache, h.CachePrefix, libraryID)
    return c.JSON(http.StatusOK, echo.Map{"message": "photo deleted"})
}
