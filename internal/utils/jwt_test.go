package utils

import (
    "testing"
    "time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    const secret = "test-secret"
    tok, err := NewAccessToken(secret, 42, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }
    uid, err := ParseAccessToken(secret, tok.Token)
    if err != nil {
        t.Fatalf("ParseAccessToken: %v", err)
    }
    if uid != 42 {
        t.Errorf("uid = %d, want 42", uid)
    }
    if !tok.Exp.After(time.Now()) {
        t.Error("expiry is not in the future")
    }
}

func TestParseAccessTokenRejects(t *testing.T) {
    const secret = "test-secret"

    expired, err := NewAccessToken(secret, 42, -1)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }

    good, err := NewAccessToken(secret, 42, 15)
    if err != nil {
        t.Fatalf("NewAccessToken: %v", err)
    }

    cases := []struct {
        name string
        raw  string
    }{
        {"empty", ""},
        {"garbage", "not.a.jwt"},
        {"expired", expired.Token},
        {"wrong secret", good.Token + "tampered"},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            if _, err := ParseAccessToken(secret, tc.raw); err != ErrInvalidToken {
                t.Errorf("error = %v, want ErrInvalidToken", err)
            }
        })
    }

    // Valid token, different signing secret.
    if _, err := ParseAccessToken("other-secret", good.Token); err != ErrInvalidToken {
        t.Errorf("cross-secret error = %v, want ErrInvalidToken", err)
    }
}

func TestHashRefreshRawStable(t *testing.T) {
    ref, err := NewRefreshToken(7)
    if err != nil {
        t.Fatalf("NewRefreshToken: %v", err)
    }
    if len(ref.Raw) != 96 {
        t.Errorf("raw token length = %d, want 96", len(ref.Raw))
    }
    if HashRefreshRaw(ref.Raw) != HashRefreshRaw(ref.Raw) {
        t.Error("hash is not deterministic")
    }
    other, err := NewRefreshToken(7)
    if err != nil {
        t.Fatalf("NewRefreshToken: %v", err)
    }
    if HashRefreshRaw(ref.Raw) == HashRefreshRaw(other.Raw) {
        t.Error("two tokens share a hash")
    }
}

func TestPasswordHashVerify(t *testing.T) {
    hash, err := HashPassword("hunter22", 4)
    if err != nil {
        t.Fatalf("HashPassword: %v", err)
    }
    if !VerifyPassword(hash, "hunter22") {
        t.Error("correct password rejected")
    }
    if VerifyPassword(hash, "wrong") {
        t.Error("wrong password accepted")
    }
}
