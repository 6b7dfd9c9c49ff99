package handler

import (
    "encoding/json"
    "net/http"
    "testing"
)

func TestRegisterAndLogin(t *testing.T) {
    env := newTestEnv(t)

    uid := env.register(t, "alice")
    if uid == 0 {
        t.Fatal("register returned user id 0")
    }

    rec, _ := env.call(t, env.auth.Login, http.MethodPost, "/auth/login",
        `{"email":"alice@example.com","password":"hunter22"}`, 0)
    if rec.Code != http.StatusOK {
        t.Fatalf("login: status %d body %s", rec.Code, rec.Body.String())
    }
    var resp struct {
        User struct {
            ID       uint64 `json:"id"`
            Username string `json:"username"`
        } `json:"user"`
        Access struct {
            Token string `json:"token"`
        } `json:"access"`
        Refresh struct {
            Token string `json:"token"`
        } `json:"refresh"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
        t.Fatalf("decode login response: %v", err)
    }
    if resp.User.ID != uid || resp.User.Username != "alice" {
        t.Errorf("login user = %+v, want id %d username alice", resp.User, uid)
    }
    if resp.Access.Token == "" || resp.Refresh.Token == "" {
        t.Error("login did not return both tokens")
    }
}

func TestRegisterDuplicate(t *testing.T) {
    env := newTestEnv(t)
    env.register(t, "alice")

    rec, _ := env.call(t, env.auth.Register, http.MethodPost, "/auth/register",
        `{"email":"alice@example.com","username":"alice2","password":"x"}`, 0)
    if rec.Code != http.StatusBadRequest {
        t.Errorf("duplicate email status = %d, want 400", rec.Code)
    }

    rec, _ = env.call(t, env.auth.Register, http.MethodPost, "/auth/register",
        `{"email":"alice2@example.com","username":"alice","password":"x"}`, 0)
    if rec.Code != http.StatusBadRequest {
        t.Errorf("duplicate username status = %d, want 400", rec.Code)
    }
}

func TestLoginInvalidCredentials(t *testing.T) {
    env := newTestEnv(t)
    env.register(t, "alice")

    rec, _ := env.call(t, env.auth.Login, http.MethodPost, "/auth/login",
        `{"email":"alice@example.com","password":"wrong"}`, 0)
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("wrong password status = %d, want 401", rec.Code)
    }
    rec, _ = env.call(t, env.auth.Login, http.MethodPost, "/auth/login",
        `{"email":"nobody@example.com","password":"x"}`, 0)
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("unknown email status = %d, want 401", rec.Code)
    }
}

func TestRefreshRotation(t *testing.T) {
    env := newTestEnv(t)
    env.register(t, "alice")

    rec, _ := env.call(t, env.auth.Login, http.MethodPost, "/auth/login",
        `{"email":"alice@example.com","password":"hunter22"}`, 0)
    var login struct {
        Refresh struct {
            Token string `json:"token"`
        } `json:"refresh"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
        t.Fatalf("decode login: %v", err)
    }

    rec, _ = env.call(t, env.auth.Refresh, http.MethodPost, "/auth/refresh",
        `{"refreshToken":"`+login.Refresh.Token+`"}`, 0)
    if rec.Code != http.StatusOK {
        t.Fatalf("refresh: status %d body %s", rec.Code, rec.Body.String())
    }

    // Rotation revokes the old token.
    rec, _ = env.call(t, env.auth.Refresh, http.MethodPost, "/auth/refresh",
        `{"refreshToken":"`+login.Refresh.Token+`"}`, 0)
    if rec.Code != http.StatusUnauthorized {
        t.Errorf("reused refresh status = %d, want 401", rec.Code)
    }
}

func TestUpdateProfile(t *testing.T) {
    env := newTestEnv(t)
    uid := env.register(t, "alice")
    env.register(t, "bob")

    rec, _ := env.call(t, env.auth.UpdateProfile, http.MethodPut, "/auth/profile",
        `{"username":"bob","email":"alice@example.com"}`, uid)
    if rec.Code != http.StatusBadRequest {
        t.Errorf("duplicate username status = %d, want 400", rec.Code)
    }

    rec, _ = env.call(t, env.auth.UpdateProfile, http.MethodPut, "/auth/profile",
        `{"username":"alice-renamed","email":"alice@example.com"}`, uid)
    if rec.Code != http.StatusOK {
        t.Fatalf("update profile: status %d body %s", rec.Code, rec.Body.String())
    }

    rec, _ = env.call(t, env.auth.Me, http.MethodGet, "/auth/me", "", uid)
    if rec.Code != http.StatusOK {
        t.Fatalf("me: status %d", rec.Code)
    }
    var me struct {
        User struct {
            Username string `json:"username"`
        } `json:"user"`
    }
    if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
        t.Fatalf("decode me: %v", err)
    }
    if me.User.Username != "alice-renamed" {
        t.Errorf("username = %q, want alice-renamed", me.User.Username)
    }
}
