// Package realtime implements the websocket channel: a hub of per-library
// rooms, per-connection read/write pumps, and the HTTP upgrade handler.
package realtime

import (
    "encoding/json"

    "photolibrary/internal/repository"
)

// Wire event names.  Client to server: join, leave, send.  Server to
// client: the three broadcast events.
const (
    EventJoinLibrary  = "join-library"
    EventLeaveLibrary = "leave-library"
    EventSendMessage  = "send-message"

    // EventNewMessage duplicates every heart-message emission for older
    // clients that still listen on the generic name.
    EventNewMessage      = "new-message"
    EventNewHeartMessage = "new-heart-message"
    EventNewPhotoComment = "new-photo-comment"
)

// Envelope is the JSON frame exchanged in both directions.
type Envelope struct {
    Event string          `json:"event"`
    Data  json.RawMessage `json:"data"`
}

// outEnvelope is the server-to-client frame with an already typed payload.
type outEnvelope struct {
    Event string      `json:"event"`
    Data  interface{} `json:"data"`
}

// sendMessagePayload is the client's send-message request.  A payload with
// PhotoID set is a photo comment; one with RecipientIDs set is a heart
// message.
type sendMessagePayload struct {
    LibraryID    uint64   `json:"libraryId"`
    Content      string   `json:"content"`
    PhotoID      *uint64  `json:"photoId"`
    ReplyToID    *uint64  `json:"replyToId"`
    RecipientIDs []uint64 `json:"recipientIds"`
}

// roomPayload carries the library id for join/leave requests.
type roomPayload struct {
    LibraryID uint64 `json:"libraryId"`
}

// photoCommentPayload is broadcast to a room when a comment lands.
type photoCommentPayload struct {
    PhotoID uint64                    `json:"photoId"`
    Comment *repository.MessageDetail `json:"comment"`
}
