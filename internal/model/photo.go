package model

import "time"

// Photo represents an uploaded image in the `photos` table.  The image
// bytes live in the blob store; only the resulting URL is persisted here.
// Deleting a photo removes every message that references it.
//
// Fields:
//  ID          – primary key identifier.
//  LibraryID   – library the photo belongs to.
//  UserID      – uploading user; only they may delete the photo.
//  ImageURL    – opaque blob store URL.
//  Description – optional caption.
//  IsHighlight – flagged for prominent display in the library.
//  CreatedAt   – upload timestamp.
type Photo struct {
    ID          uint64    // photos.id
    LibraryID   uint64    // photos.library_id
    UserID      uint64    // photos.user_id
    ImageURL    string    // photos.image_url
    Description *string   // photos.description (nullable)
    IsHighlight bool      // photos.is_highlight
    CreatedAt   time.Time // photos.created_at
}
