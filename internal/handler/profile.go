package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "photolibrary/internal/repository"
    "photolibrary/internal/storage"
)

// maxAvatarBytes caps profile photo uploads at 5 MB.
const maxAvatarBytes = 5 << 20

// ProfileHandler sets the caller's avatar.
type ProfileHandler struct {
    Users *repository.UserRepo
    Store storage.ObjectStore
}

func NewProfileHandler(u *repository.UserRepo, s storage.ObjectStore) *ProfileHandler {
    return &ProfileHandler{Users: u, Store: s}
}

// UploadPhoto stores the multipart "photo" file in the blob store and saves
// the resulting URL on the user row.
func (h *ProfileHandler) UploadPhoto(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if c.Request().ContentLength > maxAvatarBytes+maxMultipartOverhead {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "photo exceeds the 5 MB limit"})
    }
    file, err := c.FormFile("photo")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file is required"})
    }
    if file.Size > maxAvatarBytes {
        return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "photo exceeds the 5 MB limit"})
    }
    if h.Store == nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload service not configured"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    src, err := file.Open()
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file is required"})
    }
    defer func() { _ = src.Close() }()

    url, err := h.Store.Upload(ctx, "avatars", src, file.Size, file.Header.Get("Content-Type"))
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed: " + err.Error()})
    }
    if err := h.Users.SetProfilePhoto(ctx, uid, url); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save profile photo failed"})
    }

    u, err := h.Users.GetByID(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}
