package repository

import (
    "context"
    "errors"
    "testing"
)

func TestRejoinResetsWelcome(t *testing.T) {
    db := newTestDB(t)
    owner := createTestUser(t, db, "alice")
    joiner := createTestUser(t, db, "bob")
    lib := createTestLibrary(t, db, owner, "Family Trip")
    addTestMember(t, db, lib.ID, joiner)

    repo := NewMemberRepo(db)
    ctx := context.Background()

    if err := repo.MarkWelcomeSeen(ctx, lib.ID, joiner); err != nil {
        t.Fatalf("MarkWelcomeSeen: %v", err)
    }
    before, err := repo.Get(ctx, lib.ID, joiner)
    if err != nil {
        t.Fatalf("Get: %v", err)
    }
    if !before.HasSeenWelcome {
        t.Fatal("HasSeenWelcome = false after MarkWelcomeSeen")
    }

    if err := repo.Rejoin(ctx, lib.ID, joiner); err != nil {
        t.Fatalf("Rejoin: %v", err)
    }
    after, err := repo.Get(ctx, lib.ID, joiner)
    if err != nil {
        t.Fatalf("Get: %v", err)
    }
    if after.HasSeenWelcome {
        t.Error("HasSeenWelcome = true after Rejoin, want false")
    }
    if after.ID != before.ID {
        t.Errorf("membership row id changed on rejoin: %d -> %d", before.ID, after.ID)
    }

    // Still a single row for the pair.
    var n int
    if err := db.QueryRow(`SELECT COUNT(*) FROM library_members WHERE library_id = ? AND user_id = ?`,
        lib.ID, joiner).Scan(&n); err != nil {
        t.Fatalf("count: %v", err)
    }
    if n != 1 {
        t.Errorf("got %d membership rows, want 1", n)
    }
}

func TestRejoinUnknownMember(t *testing.T) {
    db := newTestDB(t)
    owner := createTestUser(t, db, "alice")
    stranger := createTestUser(t, db, "bob")
    lib := createTestLibrary(t, db, owner, "Family Trip")

    if err := NewMemberRepo(db).Rejoin(context.Background(), lib.ID, stranger); !errors.Is(err, ErrMemberNotFound) {
        t.Errorf("Rejoin error = %v, want ErrMemberNotFound", err)
    }
}

func TestMarkWelcomeSeenIdempotent(t *testing.T) {
    db := newTestDB(t)
    owner := createTestUser(t, db, "alice")
    lib := createTestLibrary(t, db, owner, "Family Trip")

    repo := NewMemberRepo(db)
    ctx := context.Background()
    for i := 0; i < 2; i++ {
        if err := repo.MarkWelcomeSeen(ctx, lib.ID, owner); err != nil {
            t.Fatalf("MarkWelcomeSeen call %d: %v", i+1, err)
        }
    }
    m, err := repo.Get(ctx, lib.ID, owner)
    if err != nil {
        t.Fatalf("Get: %v", err)
    }
    if !m.HasSeenWelcome {
        t.Error("HasSeenWelcome = false, want true")
    }
}

func TestDeleteMember(t *testing.T) {
    db := newTestDB(t)
    owner := createTestUser(t, db, "alice")
    joiner := createTestUser(t, db, "bob")
    lib := createTestLibrary(t, db, owner, "Family Trip")
    addTestMember(t, db, lib.ID, joiner)

    repo := NewMemberRepo(db)
    ctx := context.Background()

    if err := repo.Delete(ctx, lib.ID, joiner); err != nil {
        t.Fatalf("Delete: %v", err)
    }
    if ok, err := repo.IsMember(ctx, lib.ID, joiner); err != nil || ok {
        t.Errorf("IsMember after delete = (%v, %v), want (false, nil)", ok, err)
    }
    if err := repo.Delete(ctx, lib.ID, joiner); !errors.Is(err, ErrMemberNotFound) {
        t.Errorf("second Delete error = %v, want ErrMemberNotFound", err)
    }
}

func TestCountIn(t *testing.T) {
    db := newTestDB(t)
    owner := createTestUser(t, db, "alice")
    member := createTestUser(t, db, "bob")
    outsider := createTestUser(t, db, "carol")
    lib := createTestLibrary(t, db, owner, "Family Trip")
    addTestMember(t, db, lib.ID, member)

    repo := NewMemberRepo(db)
    ctx := context.Background()

    n, err := repo.CountIn(ctx, lib.ID, []uint64{owner, member})
    if err != nil {
        t.Fatalf("CountIn: %v", err)
    }
    if n != 2 {
        t.Errorf("CountIn = %d, want 2", n)
    }

    n, err = repo.CountIn(ctx, lib.ID, []uint64{owner, outsider})
    if err != nil {
        t.Fatalf("CountIn: %v", err)
    }
    if n != 1 {
        t.Errorf("CountIn with outsider = %d, want 1", n)
    }
}

func TestListByLibraryOwnerFirst(t *testing.T) {
    db := newTestDB(t)
    owner := createTestUser(t, db, "alice")
    joiner := createTestUser(t, db, "bob")
    lib := createTestLibrary(t, db, owner, "Family Trip")
    addTestMember(t, db, lib.ID, joiner)

    members, err := NewMemberRepo(db).ListByLibrary(context.Background(), lib.ID)
    if err != nil {
        t.Fatalf("ListByLibrary: %v", err)
    }
    if len(members) != 2 {
        t.Fatalf("got %d members, want 2", len(members))
    }
    if members[0].UserID != owner {
        t.Errorf("first member = %d, want owner %d", members[0].UserID, owner)
    }
    if members[0].User.Username == "" {
        t.Error("member user not joined")
    }
}
