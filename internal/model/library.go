package model

import "time"

// Role names stored in library_members.role.  A library has exactly one
// owner membership and its user id always equals libraries.created_by.
const (
    RoleOwner  = "owner"
    RoleMember = "member"
)

// Library represents a shared photo library persisted in the `libraries`
// table.  Members join it by entering the short unique code.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – human-friendly library name.
//  Description – optional free-form description.
//  Code        – unique six character join code (uppercase A–Z, 0–9).
//  CreatedBy   – user id of the creator, who is also the owner member.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – bumped on library activity so listings sort by recency.
type Library struct {
    ID          uint64    // libraries.id
    Name        string    // libraries.name
    Description *string   // libraries.description (nullable)
    Code        string    // libraries.code
    CreatedBy   uint64    // libraries.created_by
    CreatedAt   time.Time // libraries.created_at
    UpdatedAt   time.Time // libraries.updated_at
}

// LibraryMember links a user to a library.  The (library_id, user_id) pair
// is unique; re-joining updates the existing row instead of inserting a
// second one.
//
// Fields:
//  ID             – primary key identifier.
//  LibraryID      – library being joined.
//  UserID         – joining user.
//  Role           – "owner" or "member".
//  HasSeenWelcome – whether the welcome modal was acknowledged.
//  JoinedAt       – when the membership was created or last re-joined.
type LibraryMember struct {
    ID             uint64    // library_members.id
    LibraryID      uint64    // library_members.library_id
    UserID         uint64    // library_members.user_id
    Role           string    // library_members.role
    HasSeenWelcome bool      // library_members.has_seen_welcome
    JoinedAt       time.Time // library_members.joined_at
}
