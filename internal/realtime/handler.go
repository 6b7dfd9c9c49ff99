package realtime

import (
    "context"
    "encoding/json"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/gorilla/websocket"
    "github.com/labstack/echo/v4"

    "photolibrary/internal/repository"
    "photolibrary/internal/utils"
)

var upgrader = websocket.Upgrader{
    ReadBufferSize:  1024,
    WriteBufferSize: 1024,
    // Browser clients connect from the SPA origin; auth happens via the
    // token, not the origin.
    CheckOrigin: func(r *http.Request) bool { return true },
}

// SocketHandler authenticates websocket handshakes and dispatches inbound
// envelopes.  Failed validation on this path never produces an error frame;
// the client infers failure from the missing broadcast.
type SocketHandler struct {
    Secret    string
    Hub       *Hub
    Members   *repository.MemberRepo
    Photos    *repository.PhotoRepo
    Messages  *repository.MessageRepo
    Libraries *repository.LibraryRepo
}

func NewSocketHandler(secret string, hub *Hub, m *repository.MemberRepo, p *repository.PhotoRepo, msg *repository.MessageRepo, l *repository.LibraryRepo) *SocketHandler {
    return &SocketHandler{Secret: secret, Hub: hub, Members: m, Photos: p, Messages: msg, Libraries: l}
}

// Serve upgrades GET /ws?token=<jwt>.  A missing or invalid token is
// rejected with 401 before the upgrade completes.
func (h *SocketHandler) Serve(c echo.Context) error {
    uid, err := utils.ParseAccessToken(h.Secret, c.QueryParam("token"))
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
    }

    conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
    if err != nil {
        // Upgrade already wrote the failure response.
        return nil
    }

    cl := newClient(uid, conn)
    go cl.writePump()
    defer func() {
        h.Hub.LeaveAll(cl)
        close(cl.send)
    }()

    cl.readPump(func(env Envelope) { h.dispatch(cl, env) })
    return nil
}

func (h *SocketHandler) dispatch(cl *client, env Envelope) {
    switch env.Event {
    case EventJoinLibrary:
        h.handleJoin(cl, env.Data)
    case EventLeaveLibrary:
        if id, ok := parseLibraryID(env.Data); ok {
            h.Hub.Leave(id, cl)
        }
    case EventSendMessage:
        h.handleSend(cl, env.Data)
    default:
        h.Hub.drop("unknown event " + env.Event)
    }
}

func (h *SocketHandler) handleJoin(cl *client, raw json.RawMessage) {
    id, ok := parseLibraryID(raw)
    if !ok {
        h.Hub.drop("join: bad library id")
        return
    }
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    member, err := h.Members.IsMember(ctx, id, cl.UserID())
    if err != nil || !member {
        h.Hub.drop("join: not a member")
        return
    }
    h.Hub.Join(id, cl)
}

// handleSend validates and persists a socket-submitted message, then
// broadcasts it.  Every validation failure drops the message silently.
func (h *SocketHandler) handleSend(cl *client, raw json.RawMessage) {
    var p sendMessagePayload
    if err := json.Unmarshal(raw, &p); err != nil {
        h.Hub.drop("send: bad payload")
        return
    }
    p.Content = strings.TrimSpace(p.Content)
    if p.LibraryID == 0 || p.Content == "" {
        h.Hub.drop("send: missing library or content")
        return
    }

    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()

    member, err := h.Members.IsMember(ctx, p.LibraryID, cl.UserID())
    if err != nil || !member {
        h.Hub.drop("send: not a member")
        return
    }

    switch {
    case p.PhotoID != nil:
        h.sendComment(ctx, cl, p)
    case len(p.RecipientIDs) > 0:
        h.sendHeart(ctx, cl, p)
    default:
        h.Hub.drop("send: neither photo comment nor heart message")
    }
}

func (h *SocketHandler) sendComment(ctx context.Context, cl *client, p sendMessagePayload) {
    photo, err := h.Photos.GetByID(ctx, *p.PhotoID)
    if err != nil || photo.LibraryID != p.LibraryID {
        h.Hub.drop("send: photo not in library")
        return
    }
    if p.ReplyToID != nil {
        parent, err := h.Messages.GetByID(ctx, *p.ReplyToID)
        if err != nil || parent.LibraryID != p.LibraryID ||
            parent.PhotoID == nil || *parent.PhotoID != *p.PhotoID {
            h.Hub.drop("send: reply outside thread")
            return
        }
    }
    msg, err := h.Messages.CreateComment(ctx, p.LibraryID, cl.UserID(), *p.PhotoID, p.ReplyToID, p.Content)
    if err != nil {
        h.Hub.drop("send: persist comment failed")
        return
    }
    _ = h.Libraries.Touch(ctx, p.LibraryID)
    h.Hub.BroadcastComment(p.LibraryID, *p.PhotoID, msg)
}

func (h *SocketHandler) sendHeart(ctx context.Context, cl *client, p sendMessagePayload) {
    msg, err := h.Messages.CreateHeart(ctx, p.LibraryID, cl.UserID(), p.Content, p.RecipientIDs)
    if err != nil {
        h.Hub.drop("send: persist heart failed")
        return
    }
    _ = h.Libraries.Touch(ctx, p.LibraryID)
    h.Hub.BroadcastHeart(p.LibraryID, msg)
}

// parseLibraryID accepts the id as a bare number, a bare string, or an
// object with a libraryId field.  Clients have shipped all three shapes.
func parseLibraryID(raw json.RawMessage) (uint64, bool) {
    var n uint64
    if err := json.Unmarshal(raw, &n); err == nil && n > 0 {
        return n, true
    }
    var s string
    if err := json.Unmarshal(raw, &s); err == nil {
        if n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64); err == nil && n > 0 {
            return n, true
        }
    }
    var p roomPayload
    if err := json.Unmarshal(raw, &p); err == nil && p.LibraryID > 0 {
        return p.LibraryID, true
    }
    return 0, false
}
