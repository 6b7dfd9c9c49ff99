package model

import "time"

// Message is a row in the `messages` table.  The message kind is derived,
// never stored: a null PhotoID means a heart message (broadcast to an
// explicit recipient list), a non-null PhotoID means a comment on that
// photo.  ReplyToID only carries meaning for photo comments and must point
// at another message on the same photo.
//
// Fields:
//  ID        – primary key identifier.
//  LibraryID – library the message belongs to.
//  PhotoID   – photo being commented on (null for heart messages).
//  ReplyToID – parent comment for one level of quote-back (nullable).
//  UserID    – authoring user.
//  Content   – message text.
//  CreatedAt – send timestamp; messages are never edited.
type Message struct {
    ID        uint64    // messages.id
    LibraryID uint64    // messages.library_id
    PhotoID   *uint64   // messages.photo_id (nullable)
    ReplyToID *uint64   // messages.reply_to_id (nullable)
    UserID    uint64    // messages.user_id
    Content   string    // messages.content
    CreatedAt time.Time // messages.created_at
}

// IsHeart reports whether the message is a heart message rather than a
// photo comment.
func (m *Message) IsHeart() bool { return m.PhotoID == nil }

// MessageRecipient scopes a heart message's visibility.  Rows exist only
// for heart messages; a heart message is readable by its author and the
// users listed here.
//
// Fields:
//  ID        – primary key identifier.
//  MessageID – the heart message.
//  UserID    – a recipient, a member of the message's library at send time.
type MessageRecipient struct {
    ID        uint64 // message_recipients.id
    MessageID uint64 // message_recipients.message_id
    UserID    uint64 // message_recipients.user_id
}
