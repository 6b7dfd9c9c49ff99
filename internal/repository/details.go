package repository

import "time"

// This file defines the read projections returned to clients.  They carry
// json tags so handlers and the realtime layer can serialize them directly
// without another mapping step.

// UserSummary is the public slice of a user embedded in other responses.
// The password hash never appears here.
type UserSummary struct {
	ID           uint64  `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email,omitempty"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// MemberDetail is a membership row joined with its user.
type MemberDetail struct {
	ID             uint64      `json:"id"`
	LibraryID      uint64      `json:"libraryId"`
	UserID         uint64      `json:"userId"`
	Role           string      `json:"role"`
	HasSeenWelcome bool        `json:"hasSeenWelcome"`
	JoinedAt       time.Time   `json:"joinedAt"`
	User           UserSummary `json:"user"`
}

// LibraryDetail is a library with its member list and content counts,
// as returned by create/join/detail/list endpoints.
type LibraryDetail struct {
	ID           uint64         `json:"id"`
	Name         string         `json:"name"`
	Description  *string        `json:"description"`
	Code         string         `json:"code"`
	CreatedBy    uint64         `json:"createdBy"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Members      []MemberDetail `json:"members"`
	PhotoCount   int            `json:"photoCount"`
	MessageCount int            `json:"messageCount"`
}

// PhotoDetail is a photo joined with its uploader.
type PhotoDetail struct {
	ID          uint64      `json:"id"`
	LibraryID   uint64      `json:"libraryId"`
	UserID      uint64      `json:"userId"`
	ImageURL    string      `json:"imageUrl"`
	Description *string     `json:"description"`
	IsHighlight bool        `json:"isHighlight"`
	CreatedAt   time.Time   `json:"createdAt"`
	User        UserSummary `json:"user"`
}

// RecipientDetail is a heart-message recipient joined with its user.
type RecipientDetail struct {
	ID        uint64      `json:"id"`
	MessageID uint64      `json:"messageId"`
	UserID    uint64      `json:"userId"`
	User      UserSummary `json:"user"`
}

// ReplyPreview is the one-level quote-back shown under a comment:
// the parent comment's id, content and author username.
type ReplyPreview struct {
	ID      uint64 `json:"id"`
	Content string `json:"content"`
	User    struct {
		Username string `json:"username"`
	} `json:"user"`
}

// MessageDetail is a message joined with its author, and depending on the
// message kind, its recipients (heart message) or reply preview (comment).
type MessageDetail struct {
	ID         uint64            `json:"id"`
	LibraryID  uint64            `json:"libraryId"`
	PhotoID    *uint64           `json:"photoId"`
	ReplyToID  *uint64           `json:"replyToId"`
	UserID     uint64            `json:"userId"`
	Content    string            `json:"content"`
	CreatedAt  time.Time         `json:"createdAt"`
	User       UserSummary       `json:"user"`
	Recipients []RecipientDetail `json:"recipients,omitempty"`
	ReplyTo    *ReplyPreview     `json:"replyTo,omitempty"`
}
