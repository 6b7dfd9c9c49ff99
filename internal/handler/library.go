package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "photolibrary/internal/model"
    "photolibrary/internal/queue"
    "photolibrary/internal/repository"
    queuepub "photolibrary/internal/service"
)

// LibraryHandler serves library creation, joining and membership management.
type LibraryHandler struct {
    Libraries *repository.LibraryRepo
    Members   *repository.MemberRepo
    Users     *repository.UserRepo
}

func NewLibraryHandler(l *repository.LibraryRepo, m *repository.MemberRepo, u *repository.UserRepo) *LibraryHandler {
    return &LibraryHandler{Libraries: l, Members: m, Users: u}
}

type createLibraryReq struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
}
type joinLibraryReq struct {
    Code string `json:"code"`
}

// Create makes a new library with the caller as its owner member.
func (h *LibraryHandler) Create(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req createLibraryReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    lib, err := h.Libraries.CreateWithOwner(ctx, req.Name, req.Description, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create library failed"})
    }
    detail, err := h.Libraries.Detail(ctx, lib.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load library failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"library": detail})
}

// Join adds the caller to the library matching the submitted code.  Joining
// a library the caller already belongs to resets the welcome flag on the
// existing membership instead of creating a second row.
func (h *LibraryHandler) Join(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    var req joinLibraryReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    code := strings.ToUpper(strings.TrimSpace(req.Code))
    if code == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    lib, err := h.Libraries.GetByCode(ctx, code)
    if err != nil {
        if err == repository.ErrLibraryNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid library code"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    already, err := h.Members.IsMember(ctx, lib.ID, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if already {
        if err := h.Members.Rejoin(ctx, lib.ID, uid); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
        }
    } else {
        if err := h.Members.Create(ctx, lib.ID, uid, model.RoleMember); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "join failed"})
        }
    }
    _ = h.Libraries.Touch(ctx, lib.ID)

    if u, uerr := h.Users.GetByID(ctx, uid); uerr == nil {
        // Fire and forget; a broker outage must not fail the join.
        _ = queuepub.PublishActivity(c.Request().Context(), queue.ActivityEvent{
            Type:        queue.TypeMemberJoined,
            LibraryID:   lib.ID,
            LibraryName: lib.Name,
            ActorID:     uid,
            ActorName:   u.Username,
            OccurredAt:  time.Now().UTC().Format(time.RFC3339),
        })
    }

    detail, err := h.Libraries.Detail(ctx, lib.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load library failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"library": detail})
}

// MyLibraries lists every library the caller belongs to, most recently
// active first.
func (h *LibraryHandler) MyLibraries(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    list, err := h.Libraries.ListDetailsByMember(ctx, uid)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if list == nil {
        list = []*repository.LibraryDetail{}
    }
    return c.JSON(http.StatusOK, echo.Map{"libraries": list})
}

// Get returns one library with its members plus the caller's own membership
// so the client can decide whether to show the welcome modal.
func (h *LibraryHandler) Get(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    libID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    member, err := h.Members.Get(ctx, libID, uid)
    if err != nil {
        if err == repository.ErrNotMember {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this library"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }

    detail, err := h.Libraries.Detail(ctx, libID)
    if err != nil {
        if err == repository.ErrLibraryNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "library not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load library failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "library": detail,
        "currentMember": echo.Map{
            "role":           member.Role,
            "hasSeenWelcome": member.HasSeenWelcome,
            "joinedAt":       member.JoinedAt,
        },
    })
}

// MarkWelcomeSeen acknowledges the welcome modal.  Safe to call repeatedly.
func (h *LibraryHandler) MarkWelcomeSeen(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    libID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if ok, err := h.Members.IsMember(ctx, libID, uid); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    } else if !ok {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "not a member of this library"})
    }
    if err := h.Members.MarkWelcomeSeen(ctx, libID, uid); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "welcome marked as seen"})
}

// RemoveMember lets the library creator kick a member.  The checks run in a
// fixed order so clients get stable statuses: unknown library 404, caller
// not the creator 403, target not a member 404, creator removing themselves
// 400.
func (h *LibraryHandler) RemoveMember(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    libID, ok := parseID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid library id"})
    }
    targetID, ok := parseID(c, "memberId")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid member id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    lib, err := h.Libraries.GetByID(ctx, libID)
    if err != nil {
        if err == repository.ErrLibraryNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "library not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if lib.CreatedBy != uid {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "only the library creator can remove members"})
    }
    if _, err := h.Members.Get(ctx, libID, targetID); err != nil {
        if err == repository.ErrNotMember {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if targetID == uid {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot remove yourself"})
    }
    if err := h.Members.Delete(ctx, libID, targetID); err != nil {
        if err == repository.ErrMemberNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "member removed"})
}
