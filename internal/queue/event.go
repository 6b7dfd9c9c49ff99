// Package queue defines message payloads exchanged over the message broker.
package queue

// Event types published to the library.activity queue.
const (
    TypePhotoUploaded = "photo.uploaded"
    TypeMemberJoined  = "member.joined"
)

// ActivityEvent is published after a successful library write.  It contains
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type ActivityEvent struct {
    Type        string `json:"type"`
    LibraryID   uint64 `json:"library_id"`
    LibraryName string `json:"library_name"`
    ActorID     uint64 `json:"actor_id"`
    ActorName   string `json:"actor_name"`
    PhotoID     uint64 `json:"photo_id,omitempty"`
    OccurredAt  string `json:"occurred_at"`
}
