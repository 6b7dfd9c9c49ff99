package repository

import (
    "context"
    "database/sql"
    "fmt"
    "testing"

    _ "modernc.org/sqlite"

    "photolibrary/internal/model"
)

// testSchema mirrors the production MySQL schema in SQLite syntax.  The
// DATETIME column types matter: the driver uses them to hand back
// time.Time values, and the UNIQUE constraints produce errors naming the
// offending column just like MySQL's duplicate-key message does.
var testSchema = []string{
    `CREATE TABLE users (
        id            INTEGER PRIMARY KEY AUTOINCREMENT,
        email         TEXT NOT NULL UNIQUE,
        username      TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        profile_photo TEXT,
        created_at    DATETIME NOT NULL,
        updated_at    DATETIME NOT NULL
    )`,
    `CREATE TABLE refresh_tokens (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id    INTEGER NOT NULL REFERENCES users(id),
        token_hash TEXT NOT NULL,
        expires_at DATETIME NOT NULL,
        revoked_at DATETIME,
        created_at DATETIME NOT NULL
    )`,
    `CREATE TABLE libraries (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        name        TEXT NOT NULL,
        description TEXT,
        code        TEXT NOT NULL UNIQUE,
        created_by  INTEGER NOT NULL REFERENCES users(id),
        created_at  DATETIME NOT NULL,
        updated_at  DATETIME NOT NULL
    )`,
    `CREATE TABLE library_members (
        id               INTEGER PRIMARY KEY AUTOINCREMENT,
        library_id       INTEGER NOT NULL REFERENCES libraries(id),
        user_id          INTEGER NOT NULL REFERENCES users(id),
        role             TEXT NOT NULL DEFAULT 'member',
        has_seen_welcome INTEGER NOT NULL DEFAULT 0,
        joined_at        DATETIME NOT NULL,
        UNIQUE (library_id, user_id)
    )`,
    `CREATE TABLE photos (
        id           INTEGER PRIMARY KEY AUTOINCREMENT,
        library_id   INTEGER NOT NULL REFERENCES libraries(id),
        user_id      INTEGER NOT NULL REFERENCES users(id),
        image_url    TEXT NOT NULL,
        description  TEXT,
        is_highlight INTEGER NOT NULL DEFAULT 0,
        created_at   DATETIME NOT NULL
    )`,
    `CREATE TABLE messages (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        library_id  INTEGER NOT NULL REFERENCES libraries(id),
        photo_id    INTEGER,
        reply_to_id INTEGER,
        user_id     INTEGER NOT NULL REFERENCES users(id),
        content     TEXT NOT NULL,
        created_at  DATETIME NOT NULL
    )`,
    `CREATE TABLE message_recipients (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        message_id INTEGER NOT NULL REFERENCES messages(id),
        user_id    INTEGER NOT NULL REFERENCES users(id),
        UNIQUE (message_id, user_id)
    )`,
}

// newTestDB returns an in-memory database with the full schema applied.
// Max open connections is pinned to 1 so every query sees the same
// in-memory store.
func newTestDB(t *testing.T) *sql.DB {
    t.Helper()
    db, err := sql.Open("sqlite", ":memory:")
    if err != nil {
        t.Fatalf("open sqlite: %v", err)
    }
    db.SetMaxOpenConns(1)
    t.Cleanup(func() { _ = db.Close() })
    for i, stmt := range testSchema {
        if _, err := db.Exec(stmt); err != nil {
            t.Fatalf("schema statement %d: %v", i, err)
        }
    }
    return db
}

var testUserSeq int

// createTestUser inserts a user with a unique email/username pair.
func createTestUser(t *testing.T, db *sql.DB, name string) uint64 {
    t.Helper()
    testUserSeq++
    users := NewUserRepo(db)
    id, err := users.Create(context.Background(),
        fmt.Sprintf("%s%d@example.com", name, testUserSeq), fmt.Sprintf("%s%d", name, testUserSeq),
        "hunter22", 4)
    if err != nil {
        t.Fatalf("create test user %s: %v", name, err)
    }
    return id
}

// createTestLibrary creates a library owned by ownerID.
func createTestLibrary(t *testing.T, db *sql.DB, ownerID uint64, name string) *model.Library {
    t.Helper()
    lib, err := NewLibraryRepo(db).CreateWithOwner(context.Background(), name, nil, ownerID)
    if err != nil {
        t.Fatalf("create test library %s: %v", name, err)
    }
    return lib
}

// addTestMember joins userID to the library as a plain member.
func addTestMember(t *testing.T, db *sql.DB, libraryID, userID uint64) {
    t.Helper()
    if err := NewMemberRepo(db).Create(context.Background(), libraryID, userID, model.RoleMember); err != nil {
        t.Fatalf("add test member: %v", err)
    }
}

// createTestPhoto inserts a photo row directly through the repository.
func createTestPhoto(t *testing.T, db *sql.DB, libraryID, userID uint64, highlight bool) *PhotoDetail {
    t.Helper()
    p, err := NewPhotoRepo(db).Create(context.Background(), &model.Photo{
        LibraryID:   libraryID,
        UserID:      userID,
        ImageURL:    "https://blob.example.com/photos/test.jpg",
        IsHighlight: highlight,
    })
    if err != nil {
        t.Fatalf("create test photo: %v", err)
    }
    return p
}
