package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"photolibrary/internal/model"
	"photolibrary/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")
var ErrUsernameExists = errors.New("username already exists")

// Create inserts a user and returns its ID.  Email is normalized to lower
// case; username keeps its case but is unique case-sensitively at the DB.
func (r *UserRepo) Create(ctx context.Context, email, username, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, created_at, updated_at) VALUES (?,?,?,?,?)",
		email, username, hash, now, now)
	if err != nil {
		if duplicateOn(err, "email") {
			return 0, ErrEmailExists
		}
		if duplicateOn(err, "username") {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,profile_photo,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,username,password_hash,profile_photo,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.ProfilePhoto, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// UpdateProfile changes username and email for a user.  Duplicates surface
// as the same sentinel errors Create uses.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, username, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET username=?, email=?, updated_at=? WHERE id=?",
		username, email, time.Now().UTC(), id)
	if err != nil {
		if duplicateOn(err, "email") {
			return ErrEmailExists
		}
		if duplicateOn(err, "username") {
			return ErrUsernameExists
		}
	}
	return err
}

// SetProfilePhoto stores the blob store URL of the user's avatar.
func (r *UserRepo) SetProfilePhoto(ctx context.Context, id uint64, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET profile_photo=?, updated_at=? WHERE id=?",
		url, time.Now().UTC(), id)
	return err
}
