package handler

import (
    "database/sql"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    _ "modernc.org/sqlite"

    "photolibrary/internal/config"
    "photolibrary/internal/repository"
)

// testSchema mirrors the production schema in SQLite syntax, the same way
// the repository tests do.
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
        user_id    INTEGER NOT NULL,
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
        created_by  INTEGER NOT NULL,
        created_at  DATETIME NOT NULL,
        updated_at  DATETIME NOT NULL
    )`,
    `CREATE TABLE library_members (
        id               INTEGER PRIMARY KEY AUTOINCREMENT,
        library_id       INTEGER NOT NULL,
        user_id          INTEGER NOT NULL,
        role             TEXT NOT NULL DEFAULT 'member',
        has_seen_welcome INTEGER NOT NULL DEFAULT 0,
        joined_at        DATETIME NOT NULL,
        UNIQUE (library_id, user_id)
    )`,
    `CREATE TABLE photos (
        id           INTEGER PRIMARY KEY AUTOINCREMENT,
        library_id   INTEGER NOT NULL,
        user_id      INTEGER NOT NULL,
        image_url    TEXT NOT NULL,
        description  TEXT,
        is_highlight INTEGER NOT NULL DEFAULT 0,
        created_at   DATETIME NOT NULL
    )`,
    `CREATE TABLE messages (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        library_id  INTEGER NOT NULL,
        photo_id    INTEGER,
        reply_to_id INTEGER,
        user_id     INTEGER NOT NULL,
        content     TEXT NOT NULL,
        created_at  DATETIME NOT NULL
    )`,
    `CREATE TABLE message_recipients (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        message_id INTEGER NOT NULL,
        user_id    INTEGER NOT NULL,
        UNIQUE (message_id, user_id)
    )`,
}

// testEnv bundles the handlers under test with their shared database.
type testEnv struct {
    e         *echo.Echo
    db        *sql.DB
    auth      *AuthHandler
    libraries *LibraryHandler
    photos    *PhotoHandler
    messages  *MessageHandler
}

func newTestEnv(t *testing.T) *testEnv {
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

    cfg := config.Config{
        JWTSecret:      "test-secret",
        AccessTTLMin:   15,
        RefreshTTLDays: 7,
        BcryptCost:     4,
    }
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    libraries := repository.NewLibraryRepo(db)
    members := repository.NewMemberRepo(db)
    photos := repository.NewPhotoRepo(db)
    messages := repository.NewMessageRepo(db)

    return &testEnv{
        e:         echo.New(),
        db:        db,
        auth:      NewAuthHandler(cfg, users, tokens),
        libraries: NewLibraryHandler(libraries, members, users),
        photos:    NewPhotoHandler(photos, members, libraries, users, nil, nil, ""),
        messages:  NewMessageHandler(messages, members, photos, libraries, nil),
    }
}

// call runs a handler against a JSON request and returns the recorder plus
// the decoded body.
func (env *testEnv) call(t *testing.T, h echo.HandlerFunc, method, path, body string, userID uint64, params ...string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
    t.Helper()
    var reader io.Reader
    if body != "" {
        reader = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, path, reader)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    c := env.e.NewContext(req, rec)
    if userID != 0 {
        c.Set("user_id", userID)
    }
    if len(params) > 0 {
        names := make([]string, 0, len(params)/2)
        values := make([]string, 0, len(params)/2)
        for i := 0; i+1 < len(params); i += 2 {
            names = append(names, params[i])
            values = append(values, params[i+1])
        }
        c.SetParamNames(names...)
        c.SetParamValues(values...)
    }
    if err := h(c); err != nil {
        t.Fatalf("handler error: %v", err)
    }
    out := map[string]json.RawMessage{}
    if rec.Body.Len() > 0 {
        _ = json.Unmarshal(rec.Body.Bytes(), &out)
    }
    return rec, out
}

// register creates a user through the handler and returns its id.
func (env *testEnv) register(t *testing.T, name string) uint64 {
    t.Helper()
    body := fmt.Sprintf(`{"email":"%s@example.com","username":"%s","password":"hunter22"}`, name, name)
    rec, _ := env.call(t, env.auth.Register, http.MethodPost, "/auth/register", body, 0)
    if rec.Code != http.StatusCreated {
        t.Fatalf("register %s: status %d body %s", name, rec.Code, rec.Body.String())
    }
    var resp struct {
        User struct {
            ID uint64 `json:"id"`
        } `json:"user"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode register response: %v", err)
    }
    return resp.User.ID
}

// createLibrary makes a library owned by userID and returns its id and code.
func (env *testEnv) createLibrary(t *testing.T, userID uint64, name string) (uint64, string) {
    t.Helper()
    rec, _ := env.call(t, env.libraries.Create, http.MethodPost, "/libraries",
        fmt.Sprintf(`{"name":"%s"}`, name), userID)
    if rec.Code != http.StatusCreated {
        t.Fatalf("create library: status %d body %s", rec.Code, rec.Body.String())
    }
    var resp struct {
        Library struct {
            ID   uint64 `json:"id"`
            Code string `json:"code"`
        } `json:"library"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode create response: %v", err)
    }
    return resp.Library.ID, resp.Library.Code
}
