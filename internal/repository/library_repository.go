// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Library repository: creation with a generated join
// code, lookup by id or code, and the detail/list projections that carry
// member lists and content counts.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"photolibrary/internal/model"
	"photolibrary/internal/utils"
)

// codeAttempts bounds join-code generation.  The loop retrying on a
// duplicate-key error is bounded so a (practically impossible) run of
// collisions fails loudly instead of spinning forever.
const codeAttempts = 10

// LibraryRepo encapsulates all database queries related to libraries.
type LibraryRepo struct {
	db      *sql.DB
	members *MemberRepo
}

// NewLibraryRepo constructs a LibraryRepo with the provided DB handle.
func NewLibraryRepo(db *sql.DB) *LibraryRepo {
	return &LibraryRepo{db: db, members: NewMemberRepo(db)}
}

// CreateWithOwner inserts a library with a freshly generated unique join
// code and, in the same transaction, the creator's owner membership row.
// The insert of the code is protected by the unique index; a concurrent
// duplicate surfaces as a constraint violation and the code is re-rolled.
func (r *LibraryRepo) CreateWithOwner(ctx context.Context, name string, description *string, ownerID uint64) (*model.Library, error) {
	now := time.Now().UTC()
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := utils.NewLibraryCode()

		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO libraries (name, description, code, created_by, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			name, description, code, ownerID, now, now)
		if err != nil {
			_ = tx.Rollback()
			if duplicateOn(err, "code") {
				continue // collision, roll a new code
			}
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO library_members (library_id, user_id, role, has_seen_welcome, joined_at)
			 VALUES (?, ?, 'owner', 0, ?)`,
			uint64(id), ownerID, now); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &model.Library{
			ID: uint64(id), Name: name, Description: description, Code: code,
			CreatedBy: ownerID, CreatedAt: now, UpdatedAt: now,
		}, nil
	}
	return nil, ErrCodeExhausted
}

// GetByID fetches a library by its ID.  It returns ErrLibraryNotFound if
// no row is found.
func (r *LibraryRepo) GetByID(ctx context.Context, id uint64) (*model.Library, error) {
	const q = `SELECT id, name, description, code, created_by, created_at, updated_at
	           FROM libraries WHERE id = ?`
	var l model.Library
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.Name, &l.Description, &l.Code, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}
	return &l, nil
}

// GetByCode fetches a library by its join code.  Codes are stored
// uppercase; lookups are exact, clients normalize input before submitting.
func (r *LibraryRepo) GetByCode(ctx context.Context, code string) (*model.Library, error) {
	const q = `SELECT id, name, description, code, created_by, created_at, updated_at
	           FROM libraries WHERE code = ?`
	var l model.Library
	if err := r.db.QueryRowContext(ctx, q, code).Scan(
		&l.ID, &l.Name, &l.Description, &l.Code, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLibraryNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Touch bumps updated_at so the my-libraries listing reflects recent
// activity (photo uploads and messages call this after their writes).
func (r *LibraryRepo) Touch(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE libraries SET updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	return err
}

// Detail returns a library with members and photo/message counts populated.
func (r *LibraryRepo) Detail(ctx context.Context, id uint64) (*LibraryDetail, error) {
	lib, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.buildDetail(ctx, lib)
}

func (r *LibraryRepo) buildDetail(ctx context.Context, lib *model.Library) (*LibraryDetail, error) {
	members, err := r.members.ListByLibrary(ctx, lib.ID)
	if err != nil {
		return nil, err
	}
	d := &LibraryDetail{
		ID: lib.ID, Name: lib.Name, Description: lib.Description, Code: lib.Code,
		CreatedBy: lib.CreatedBy, CreatedAt: lib.CreatedAt, UpdatedAt: lib.UpdatedAt,
		Members: members,
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM photos WHERE library_id = ?`, lib.ID).Scan(&d.PhotoCount); err != nil {
		return nil, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE library_id = ?`, lib.ID).Scan(&d.MessageCount); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDetailsByMember returns the libraries the user belongs to, most
// recently updated first, each with full member list and counts.  As
// defense in depth beyond the membership join, any library whose member
// list somehow lacks the caller is dropped from the result.
func (r *LibraryRepo) ListDetailsByMember(ctx context.Context, userID uint64) ([]*LibraryDetail, error) {
	const q = `SELECT l.id, l.name, l.description, l.code, l.created_by, l.created_at, l.updated_at
	           FROM libraries l
	           JOIN library_members m ON m.library_id = l.id
	           WHERE m.user_id = ?
	           ORDER BY l.updated_at DESC, l.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var libs []*model.Library
	for rows.Next() {
		l := new(model.Library)
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Code, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		libs = append(libs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*LibraryDetail, 0, len(libs))
	for _, l := range libs {
		d, err := r.buildDetail(ctx, l)
		if err != nil {
			return nil, err
		}
		callerPresent := false
		for _, m := range d.Members {
			if m.UserID == userID {
				callerPresent = true
				break
			}
		}
		if !callerPresent {
			// Invariant violation if it ever happens; do not leak the library.
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
