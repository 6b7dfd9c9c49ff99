// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Message repository, the single write path shared by
// the REST handlers and the realtime layer.  A message with a null photo_id
// is a heart message scoped to its recipient rows; a non-null photo_id makes
// it a photo comment visible to the whole library.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"photolibrary/internal/model"
)

// MessageRepo encapsulates all database queries related to messages and
// their recipients.
type MessageRepo struct {
	db      *sql.DB
	members *MemberRepo
}

// NewMessageRepo constructs a MessageRepo with the provided DB handle.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db, members: NewMemberRepo(db)}
}

// CreateHeart persists a heart message and its recipient rows in one
// transaction.  Every requested recipient must currently be a member of the
// library: the repository compares the membership count against the request
// and rejects on any mismatch, so a recipient list can never reference an
// outsider.  Content is stored trimmed.
func (r *MessageRepo) CreateHeart(ctx context.Context, libraryID, userID uint64, content string, recipientIDs []uint64) (*MessageDetail, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(recipientIDs) == 0 {
		return nil, ErrInvalidRecipients
	}
	n, err := r.members.CountIn(ctx, libraryID, recipientIDs)
	if err != nil {
		return nil, err
	}
	if n != len(recipientIDs) {
		return nil, ErrInvalidRecipients
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (library_id, user_id, content, created_at) VALUES (?, ?, ?, ?)`,
		libraryID, userID, content, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	var sb strings.Builder
	sb.WriteString(`INSERT INTO message_recipients (message_id, user_id) VALUES `)
	args := make([]interface{}, 0, len(recipientIDs)*2)
	for i, rid := range recipientIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?)")
		args = append(args, uint64(id), rid)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.Detail(ctx, uint64(id))
}

// CreateComment persists a photo comment.  Linkage validation (photo in
// library, parent on the same photo) happens in the caller, which has the
// photo and parent rows at hand.
func (r *MessageRepo) CreateComment(ctx context.Context, libraryID, userID, photoID uint64, replyToID *uint64, content string) (*MessageDetail, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (library_id, photo_id, reply_to_id, user_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		libraryID, photoID, replyToID, userID, strings.TrimSpace(content), time.Now().UTC())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.Detail(ctx, uint64(id))
}

// GetByID fetches a bare message row, used for reply-linkage validation.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (*model.Message, error) {
	const q = `SELECT id, library_id, photo_id, reply_to_id, user_id, content, created_at
	           FROM messages WHERE id = ?`
	var m model.Message
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.LibraryID, &m.PhotoID, &m.ReplyToID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Detail fetches one message joined with its author, recipients and reply
// preview.
func (r *MessageRepo) Detail(ctx context.Context, id uint64) (*MessageDetail, error) {
	const q = `SELECT m.id, m.library_id, m.photo_id, m.reply_to_id, m.user_id, m.content, m.created_at,
	                  u.id, u.username, u.email, u.profile_photo
	           FROM messages m
	           JOIN users u ON u.id = m.user_id
	           WHERE m.id = ?`
	var d MessageDetail
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.LibraryID, &d.PhotoID, &d.ReplyToID, &d.UserID, &d.Content, &d.CreatedAt,
		&d.User.ID, &d.User.Username, &d.User.Email, &d.User.ProfilePhoto); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	out := []*MessageDetail{&d}
	if err := r.fillRecipients(ctx, out); err != nil {
		return nil, err
	}
	if err := r.fillReplyPreviews(ctx, out); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListHeartsFor returns the heart messages of a library visible to the
// user: those they authored plus those naming them as a recipient, newest
// first.  The All/Sent/Received split is a client-side view; the server
// always returns the full sender-or-recipient set.
func (r *MessageRepo) ListHeartsFor(ctx context.Context, libraryID, userID uint64) ([]*MessageDetail, error) {
	const q = `SELECT m.id, m.library_id, m.photo_id, m.reply_to_id, m.user_id, m.content, m.created_at,
	                  u.id, u.username, u.email, u.profile_photo
	           FROM messages m
	           JOIN users u ON u.id = m.user_id
	           WHERE m.library_id = ? AND m.photo_id IS NULL
	             AND (m.user_id = ? OR m.id IN
	                  (SELECT message_id FROM message_recipients WHERE user_id = ?))
	           ORDER BY m.created_at DESC, m.id DESC`
	out, err := r.scanDetails(ctx, q, libraryID, userID, userID)
	if err != nil {
		return nil, err
	}
	if err := r.fillRecipients(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCommentsByPhoto returns a photo's comments in chronological thread
// order, each with its one-level reply preview.
func (r *MessageRepo) ListCommentsByPhoto(ctx context.Context, photoID uint64) ([]*MessageDetail, error) {
	const q = `SELECT m.id, m.library_id, m.photo_id, m.reply_to_id, m.user_id, m.content, m.created_at,
	                  u.id, u.username, u.email, u.profile_photo
	           FROM messages m
	           JOIN users u ON u.id = m.user_id
	           WHERE m.photo_id = ?
	           ORDER BY m.created_at ASC, m.id ASC`
	out, err := r.scanDetails(ctx, q, photoID)
	if err != nil {
		return nil, err
	}
	if err := r.fillReplyPreviews(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MessageRepo) scanDetails(ctx context.Context, q string, args ...interface{}) ([]*MessageDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MessageDetail
	for rows.Next() {
		d := new(MessageDetail)
		if err := rows.Scan(
			&d.ID, &d.LibraryID, &d.PhotoID, &d.ReplyToID, &d.UserID, &d.Content, &d.CreatedAt,
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

// fillRecipients loads recipient rows for all heart messages in the slice
// with a single IN query, then distributes them.
func (r *MessageRepo) fillRecipients(ctx context.Context, msgs []*MessageDetail) error {
	byID := make(map[uint64]*MessageDetail, len(msgs))
	var sb strings.Builder
	var args []interface{}
	for _, m := range msgs {
		if m.PhotoID != nil {
			continue
		}
		if len(args) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("?")
		args = append(args, m.ID)
		byID[m.ID] = m
	}
	if len(args) == 0 {
		return nil
	}
	q := `SELECT mr.id, mr.message_id, mr.user_id, u.id, u.username, u.profile_photo
	      FROM message_recipients mr
	      JOIN users u ON u.id = mr.user_id
	      WHERE mr.message_id IN (` + sb.String() + `)
	      ORDER BY mr.id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rec RecipientDetail
		if err := rows.Scan(&rec.ID, &rec.MessageID, &rec.UserID,
			&rec.User.ID, &rec.User.Username, &rec.User.ProfilePhoto); err != nil {
			return err
		}
		if m, ok := byID[rec.MessageID]; ok {
			m.Recipients = append(m.Recipients, rec)
		}
	}
	return rows.Err()
}

// fillReplyPreviews loads the parent id/content/author-username for every
// message in the slice that replies to another one.
func (r *MessageRepo) fillReplyPreviews(ctx context.Context, msgs []*MessageDetail) error {
	byParent := make(map[uint64][]*MessageDetail)
	var sb strings.Builder
	var args []interface{}
	for _, m := range msgs {
		if m.ReplyToID == nil {
			continue
		}
		if _, seen := byParent[*m.ReplyToID]; !seen {
			if len(args) > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("?")
			args = append(args, *m.ReplyToID)
		}
		byParent[*m.ReplyToID] = append(byParent[*m.ReplyToID], m)
	}
	if len(args) == 0 {
		return nil
	}
	q := `SELECT m.id, m.content, u.username
	      FROM messages m
	      JOIN users u ON u.id = m.user_id
	      WHERE m.id IN (` + sb.String() + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p ReplyPreview
		if err := rows.Scan(&p.ID, &p.Content, &p.User.Username); err != nil {
			return err
		}
		for _, m := range byParent[p.ID] {
			preview := p
			m.ReplyTo = &preview
		}
	}
	return rows.Err()
}
