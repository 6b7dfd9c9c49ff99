package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema contains the CREATE TABLE statements for the application, executed
// in order at startup.  All statements are idempotent so repeated boots are
// safe.  The unique key on libraries.code is what makes concurrent join-code
// generation safe: a collision surfaces as a duplicate-key error, never as a
// stored duplicate.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		username      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		profile_photo VARCHAR(512) NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL,
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_username (username)
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL,
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS libraries (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name        VARCHAR(128) NOT NULL,
		description TEXT NULL,
		code        CHAR(6) NOT NULL,
		created_by  BIGINT UNSIGNED NOT NULL,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL,
		UNIQUE KEY uq_libraries_code (code),
		CONSTRAINT fk_libraries_creator FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS library_members (
		id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		library_id       BIGINT UNSIGNED NOT NULL,
		user_id          BIGINT UNSIGNED NOT NULL,
		role             VARCHAR(16) NOT NULL DEFAULT 'member',
		has_seen_welcome TINYINT(1) NOT NULL DEFAULT 0,
		joined_at        DATETIME NOT NULL,
		UNIQUE KEY uq_library_members (library_id, user_id),
		CONSTRAINT fk_members_library FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE,
		CONSTRAINT fk_members_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		library_id   BIGINT UNSIGNED NOT NULL,
		user_id      BIGINT UNSIGNED NOT NULL,
		image_url    VARCHAR(512) NOT NULL,
		description  TEXT NULL,
		is_highlight TINYINT(1) NOT NULL DEFAULT 0,
		created_at   DATETIME NOT NULL,
		KEY idx_photos_library (library_id),
		CONSTRAINT fk_photos_library FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE,
		CONSTRAINT fk_photos_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		library_id  BIGINT UNSIGNED NOT NULL,
		photo_id    BIGINT UNSIGNED NULL,
		reply_to_id BIGINT UNSIGNED NULL,
		user_id     BIGINT UNSIGNED NOT NULL,
		content     TEXT NOT NULL,
		created_at  DATETIME NOT NULL,
		KEY idx_messages_library (library_id),
		KEY idx_messages_photo (photo_id),
		CONSTRAINT fk_messages_library FOREIGN KEY (library_id) REFERENCES libraries(id) ON DELETE CASCADE,
		CONSTRAINT fk_messages_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS message_recipients (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		message_id BIGINT UNSIGNED NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_message_recipients (message_id, user_id),
		CONSTRAINT fk_recipients_message FOREIGN KEY (message_id) REFERENCES messages(id) ON DELETE CASCADE,
		CONSTRAINT fk_recipients_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
}

// Migrate creates all tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	return nil
}
