package realtime

import (
    "log"
    "sync"
    "sync/atomic"

    "photolibrary/internal/repository"
)

// subscriber is one connected client from the hub's point of view.  The
// indirection keeps the hub free of websocket types so tests can register
// in-process fakes.
type subscriber interface {
    UserID() uint64
    // Send queues an envelope for delivery.  It returns false when the
    // client's buffer is full or the connection is gone.
    Send(e outEnvelope) bool
}

// Hub tracks which connections are in which library room and fans events
// out to them.  Rooms are process-local; a multi-instance deployment would
// need a shared pub/sub layer behind this.
type Hub struct {
    mu    sync.RWMutex
    rooms map[uint64]map[subscriber]struct{}

    // dropped counts messages the hub discarded: failed validation on the
    // socket path or a full client buffer.  The wire stays silent either
    // way, so the counter is the only observable trace.
    dropped atomic.Uint64
}

func NewHub() *Hub {
    return &Hub{rooms: make(map[uint64]map[subscriber]struct{})}
}

// Join adds s to the library's room.
func (h *Hub) Join(libraryID uint64, s subscriber) {
    h.mu.Lock()
    defer h.mu.Unlock()
    room, ok := h.rooms[libraryID]
    if !ok {
        room = make(map[subscriber]struct{})
        h.rooms[libraryID] = room
    }
    room[s] = struct{}{}
}

// Leave removes s from the library's room.
func (h *Hub) Leave(libraryID uint64, s subscriber) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if room, ok := h.rooms[libraryID]; ok {
        delete(room, s)
        if len(room) == 0 {
            delete(h.rooms, libraryID)
        }
    }
}

// LeaveAll removes s from every room.  Called when a connection closes.
func (h *Hub) LeaveAll(s subscriber) {
    h.mu.Lock()
    defer h.mu.Unlock()
    for id, room := range h.rooms {
        delete(room, s)
        if len(room) == 0 {
            delete(h.rooms, id)
        }
    }
}

// BroadcastComment delivers a new photo comment to everyone in the room.
func (h *Hub) BroadcastComment(libraryID, photoID uint64, msg *repository.MessageDetail) {
    env := outEnvelope{Event: EventNewPhotoComment, Data: photoCommentPayload{PhotoID: photoID, Comment: msg}}
    h.mu.RLock()
    defer h.mu.RUnlock()
    for s := range h.rooms[libraryID] {
        if !s.Send(env) {
            h.drop("comment send buffer full")
        }
    }
}

// BroadcastHeart delivers a heart message only to room connections whose
// user is the sender or one of the recipients.  Other members never see the
// frame.  Each eligible connection gets the event under both the canonical
// and the legacy name.
func (h *Hub) BroadcastHeart(libraryID uint64, msg *repository.MessageDetail) {
    eligible := map[uint64]struct{}{msg.UserID: {}}
    for _, r := range msg.Recipients {
        eligible[r.UserID] = struct{}{}
    }
    canonical := outEnvelope{Event: EventNewHeartMessage, Data: msg}
    legacy := outEnvelope{Event: EventNewMessage, Data: msg}

    h.mu.RLock()
    defer h.mu.RUnlock()
    for s := range h.rooms[libraryID] {
        if _, ok := eligible[s.UserID()]; !ok {
            continue
        }
        if !s.Send(canonical) || !s.Send(legacy) {
            h.drop("heart send buffer full")
        }
    }
}

// Dropped reports how many events the hub has discarded since start.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) drop(reason string) {
    h.dropped.Add(1)
    log.Printf("realtime: dropped event: %s", reason)
}
