package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "photolibrary/internal/repository"
)

// HeartBroadcaster pushes a freshly stored heart message to connected
// sockets.  The realtime hub implements it; a nil broadcaster disables the
// push without affecting persistence.
type HeartBroadcaster interface {
    BroadcastHeart(libraryID uint64, msg *repository.MessageDetail)
}

// MessageHandler serves heart messages and photo comment threads.
type MessageHandler struct {
    Messages  *repository.MessageRepo
    Members   *repository.MemberRepo
    Photos    *repository.PhotoRepo
    Libraries *repository.LibraryRepo
    Hub       HeartBroadcaster
}

func NewMessageHandler(msg *repository.MessageRepo, m *repository.MemberRepo, p *repository.PhotoRepo, l *repository.LibraryRepo, hub HeartBroadcaster) *MessageHandler {
    return &MessageHandler{Messages: msg, Members: m, Photos: p, Libraries: l, Hub: hub}
}

type sendHeartReq struct {
    Content      string   `json:"content"`
    RecipientIDs []uint64 `json:"recipientIds"`
}

// ListHearts returns the heart messages visible to the caller in a library:
// ones they sent plus ones addressed to them, newest first.
func (h *MessageHandler) ListHearts(c echo.Context) error {
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

    msgs, err := h.Messages.ListHeartsFor(ctx, libID, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if msgs == nil {
        msgs = []*repository.MessageDetail{}
    }
    return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}

// SendHeart stores a heart message addressed to one or more members and
// pushes it over the socket channel to the sender and recipients.
func (h *MessageHandler) SendHeart(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    libID, ok := parseID(c, "libraryId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
    }
    var req sendHeartReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if strings.TrimSpace(req.Content) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
    }
    if len(req.RecipientIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one recipient is required"})
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

    msg, err := h.Messages.CreateHeart(ctx, libID, uid, req.Content, req.RecipientIDs)
    if err != nil {
        if err == repository.ErrInvalidRecipients {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
    }
    // Hearts count as library activity no matter which transport carried
    // them; the socket path bumps it the same way.
    _ = h.Libraries.Touch(ctx, libID)
    if h.Hub != nil {
        h.Hub.BroadcastHeart(libID, msg)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// ListComments returns the comment thread under a photo in chronological
// order, each reply carrying a one-level preview of its parent.
func (h *MessageHandler) ListComments(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    photoID, ok := parseID(c, "photoId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid photo id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    photo, err := h.Photos.GetByID(ctx, photoID)
    if err != nil {
        if err == repository.ErrPhotoNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    member, err := h.Members.IsMember(ctx, photo.LibraryID, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !member {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this library"})
    }

    msgs, err := h.Messages.ListCommentsByPhoto(ctx, photoID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if msgs == nil {
        msgs = []*repository.MessageDetail{}
    }
    return c.JSON(http.StatusOK, echo.Map{"messages": msgs})
}
