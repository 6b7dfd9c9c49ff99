// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Photo repository.  Photo rows only carry the blob
// store URL; the bytes themselves never touch the database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"photolibrary/internal/model"
)

// PhotoRepo encapsulates all database queries related to photos.
type PhotoRepo struct {
	db *sql.DB
}

// NewPhotoRepo constructs a PhotoRepo with the provided DB handle.
func NewPhotoRepo(db *sql.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

// Create inserts a photo row and returns its detail projection.
func (r *PhotoRepo) Create(ctx context.Context, p *model.Photo) (*PhotoDetail, error) {
	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (library_id, user_id, image_url, description, is_highlight, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.LibraryID, p.UserID, p.ImageURL, p.Description, p.IsHighlight, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	p.ID = uint64(id)
	return r.Detail(ctx, p.ID)
}

// GetByID fetches a photo by id.  ErrPhotoNotFound when absent.
func (r *PhotoRepo) GetByID(ctx context.Context, id uint64) (*model.Photo, error) {
	const q = `SELECT id, library_id, user_id, image_url, description, is_highlight, created_at
	           FROM photos WHERE id = ?`
	var p model.Photo
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.LibraryID, &p.UserID, &p.ImageURL, &p.Description, &p.IsHighlight, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Detail fetches a photo joined with its uploader.
func (r *PhotoRepo) Detail(ctx context.Context, id uint64) (*PhotoDetail, error) {
	const q = `SELECT p.id, p.library_id, p.user_id, p.image_url, p.description, p.is_highlight, p.created_at,
	                  u.id, u.username, u.email, u.profile_photo
	           FROM photos p
	           JOIN users u ON u.id = p.user_id
	           WHERE p.id = ?`
	var d PhotoDetail
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.LibraryID, &d.UserID, &d.ImageURL, &d.Description, &d.IsHighlight, &d.CreatedAt,
		&d.User.ID, &d.User.Username, &d.User.Email, &d.User.ProfilePhoto); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByLibrary returns a library's photos newest-first, joined with their
// uploaders.  When highlightsOnly is set, only photos flagged as highlights
// are returned.
func (r *PhotoRepo) ListByLibrary(ctx context.Context, libraryID uint64, highlightsOnly bool) ([]*PhotoDetail, error) {
	q := `SELECT p.id, p.library_id, p.user_id, p.image_url, p.description, p.is_highlight, p.created_at,
	             u.id, u.username, u.email, u.profile_photo
	      FROM photos p
	      JOIN users u ON u.id = p.user_id
	      WHERE p.library_id = ?`
	if highlightsOnly {
		q += ` AND p.is_highlight = 1`
	}
	q += ` ORDER BY p.created_at DESC, p.id DESC`
	rows, err := r.db.QueryContext(ctx, q, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PhotoDetail
	for rows.Next() {
		d := new(PhotoDetail)
		if err := rows.Scan(
			&d.ID, &d.LibraryID, &d.UserID, &d.ImageURL, &d.Description, &d.IsHighlight, &d.CreatedAt,
			&d.User.ID, &d.User.Username, &d.User.Email, &d.User.ProfilePhoto); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteCascade removes a photo and every message referencing it within one
// transaction, so a comment can never outlive its photo.  Recipient rows of
// those messages go first to satisfy foreign keys (comments normally have
// none, but the order keeps the delete safe regardless).  Only the uploader
// may delete; any other actor gets ErrForbidden.  The owning library's id
// is returned so callers can invalidate caches scoped to it.
func (r *PhotoRepo) DeleteCascade(ctx context.Context, photoID, actorID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var libraryID, uploaderID uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT library_id, user_id FROM photos WHERE id = ?`, photoID).Scan(&libraryID, &uploaderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrPhotoNotFound
		}
		return 0, err
	}
	if uploaderID != actorID {
		err = ErrForbidden
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM message_recipients
		 WHERE message_id IN (SELECT id FROM messages WHERE photo_id = ?)`, photoID); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM messages WHERE photo_id = ?`, photoID); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM photos WHERE id = ?`, photoID); err != nil {
		return 0, err
	}
	return libraryID, nil
}
