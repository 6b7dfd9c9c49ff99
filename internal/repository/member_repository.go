// Package repository contains data access logic separated from HTTP handlers.
// This file implements the membership predicate and all mutations on
// library_members.  Every library-scoped operation in the application asks
// this repository "is user U a member of library L" before touching data.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"photolibrary/internal/model"
)

// MemberRepo encapsulates all database queries related to library
// memberships.  It depends on a sql.DB connection which should be
// configured elsewhere.
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo constructs a MemberRepo with the provided DB handle.
func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

// Get fetches the membership row for (libraryID, userID).  It returns
// ErrNotMember when no row exists, which callers translate to 403 so a
// non-member cannot distinguish "no library" from "not yours".
func (r *MemberRepo) Get(ctx context.Context, libraryID, userID uint64) (*model.LibraryMember, error) {
	const q = `SELECT id, library_id, user_id, role, has_seen_welcome, joined_at
	           FROM library_members WHERE library_id = ? AND user_id = ?`
	var m model.LibraryMember
	if err := r.db.QueryRowContext(ctx, q, libraryID, userID).Scan(
		&m.ID, &m.LibraryID, &m.UserID, &m.Role, &m.HasSeenWelcome, &m.JoinedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return &m, nil
}

// IsMember is the membership predicate: one indexed lookup on the
// (library_id, user_id) unique key.
func (r *MemberRepo) IsMember(ctx context.Context, libraryID, userID uint64) (bool, error) {
	_, err := r.Get(ctx, libraryID, userID)
	if errors.Is(err, ErrNotMember) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new membership row with has_seen_welcome=false.
func (r *MemberRepo) Create(ctx context.Context, libraryID, userID uint64, role string) error {
	const q = `INSERT INTO library_members (library_id, user_id, role, has_seen_welcome, joined_at)
	           VALUES (?, ?, ?, 0, ?)`
	_, err := r.db.ExecContext(ctx, q, libraryID, userID, role, time.Now().UTC())
	return err
}

// Rejoin refreshes an existing membership: the welcome modal shows again
// and joined_at reflects the re-join time.  The row count stays the same;
// joining twice never duplicates a membership.
func (r *MemberRepo) Rejoin(ctx context.Context, libraryID, userID uint64) error {
	const q = `UPDATE library_members SET has_seen_welcome = 0, joined_at = ?
	           WHERE library_id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, time.Now().UTC(), libraryID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// MarkWelcomeSeen sets has_seen_welcome for one membership.  Idempotent:
// marking twice leaves the flag true with no error.
func (r *MemberRepo) MarkWelcomeSeen(ctx context.Context, libraryID, userID uint64) error {
	const q = `UPDATE library_members SET has_seen_welcome = 1
	           WHERE library_id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, q, libraryID, userID)
	return err
}

// Delete removes a membership row.  ErrMemberNotFound when absent.
func (r *MemberRepo) Delete(ctx context.Context, libraryID, userID uint64) error {
	const q = `DELETE FROM library_members WHERE library_id = ? AND user_id = ?`
	res, err := r.db.ExecContext(ctx, q, libraryID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// ListByLibrary returns all memberships of a library joined with their
// users, owner first, then by join time.
func (r *MemberRepo) ListByLibrary(ctx context.Context, libraryID uint64) ([]MemberDetail, error) {
	const q = `SELECT m.id, m.library_id, m.user_id, m.role, m.has_seen_welcome, m.joined_at,
	                  u.id, u.username, u.email, u.profile_photo
	           FROM library_members m
	           JOIN users u ON u.id = m.user_id
	           WHERE m.library_id = ?
	           ORDER BY CASE m.role WHEN 'owner' THEN 0 ELSE 1 END, m.joined_at, m.id`
	rows, err := r.db.QueryContext(ctx, q, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MemberDetail
	for rows.Next() {
		var m MemberDetail
		if err := rows.Scan(&m.ID, &m.LibraryID, &m.UserID, &m.Role, &m.HasSeenWelcome, &m.JoinedAt,
			&m.User.ID, &m.User.Username, &m.User.Email, &m.User.ProfilePhoto); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountIn returns how many of the given user ids hold a membership in the
// library.  Heart-message sending compares this count against the requested
// recipient list; any mismatch means at least one non-member recipient.
func (r *MemberRepo) CountIn(ctx context.Context, libraryID uint64, userIDs []uint64) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var sb strings.Builder
	sb.WriteString(`SELECT COUNT(*) FROM library_members WHERE library_id = ? AND user_id IN (`)
	args := make([]interface{}, 0, len(userIDs)+1)
	args = append(args, libraryID)
	for i, id := range userIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("?")
		args = append(args, id)
	}
	sb.WriteString(")")
	var n int
	if err := r.db.QueryRowContext(ctx, sb.String(), args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
