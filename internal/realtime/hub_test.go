package realtime

import (
    "testing"

    "photolibrary/internal/repository"
)

// fakeSub records delivered envelopes without a real socket.
type fakeSub struct {
    uid  uint64
    got  []outEnvelope
    full bool
}

func (f *fakeSub) UserID() uint64 { return f.uid }
func (f *fakeSub) Send(e outEnvelope) bool {
    if f.full {
        return false
    }
    f.got = append(f.got, e)
    return true
}

func events(f *fakeSub) []string {
    out := make([]string, 0, len(f.got))
    for _, e := range f.got {
        out = append(out, e.Event)
    }
    return out
}

func heartMsg(sender uint64, recipients ...uint64) *repository.MessageDetail {
    m := &repository.MessageDetail{ID: 1, LibraryID: 10, UserID: sender, Content: "hi"}
    for i, r := range recipients {
        m.Recipients = append(m.Recipients, repository.RecipientDetail{ID: uint64(i + 1), MessageID: 1, UserID: r})
    }
    return m
}

func TestBroadcastCommentReachesWholeRoom(t *testing.T) {
    hub := NewHub()
    a := &fakeSub{uid: 1}
    b := &fakeSub{uid: 2}
    outsider := &fakeSub{uid: 3}
    hub.Join(10, a)
    hub.Join(10, b)
    hub.Join(99, outsider)

    hub.BroadcastComment(10, 5, &repository.MessageDetail{ID: 2, LibraryID: 10, UserID: 1})

    for _, s := range []*fakeSub{a, b} {
        if len(s.got) != 1 || s.got[0].Event != EventNewPhotoComment {
            t.Errorf("user %d got %v, want one %s", s.uid, events(s), EventNewPhotoComment)
        }
    }
    if len(outsider.got) != 0 {
        t.Errorf("other room received %v", events(outsider))
    }
}

// Heart messages only reach the sender and the named recipients, even when
// other members share the room.
func TestBroadcastHeartScoped(t *testing.T) {
    hub := NewHub()
    sender := &fakeSub{uid: 1}
    recipient := &fakeSub{uid: 2}
    bystander := &fakeSub{uid: 3}
    hub.Join(10, sender)
    hub.Join(10, recipient)
    hub.Join(10, bystander)

    hub.BroadcastHeart(10, heartMsg(1, 2))

    for _, s := range []*fakeSub{sender, recipient} {
        evs := events(s)
        if len(evs) != 2 || evs[0] != EventNewHeartMessage || evs[1] != EventNewMessage {
            t.Errorf("user %d got %v, want [%s %s]", s.uid, evs, EventNewHeartMessage, EventNewMessage)
        }
    }
    if len(bystander.got) != 0 {
        t.Errorf("bystander received %v", events(bystander))
    }
}

func TestLeaveStopsDelivery(t *testing.T) {
    hub := NewHub()
    s := &fakeSub{uid: 1}
    hub.Join(10, s)
    hub.Leave(10, s)

    hub.BroadcastComment(10, 5, &repository.MessageDetail{ID: 2, LibraryID: 10, UserID: 1})
    if len(s.got) != 0 {
        t.Errorf("left subscriber received %v", events(s))
    }
}

func TestLeaveAllClearsEveryRoom(t *testing.T) {
    hub := NewHub()
    s := &fakeSub{uid: 1}
    hub.Join(10, s)
    hub.Join(20, s)
    hub.LeaveAll(s)

    hub.BroadcastComment(10, 5, &repository.MessageDetail{ID: 2, LibraryID: 10, UserID: 1})
    hub.BroadcastComment(20, 6, &repository.MessageDetail{ID: 3, LibraryID: 20, UserID: 1})
    if len(s.got) != 0 {
        t.Errorf("subscriber received %v after LeaveAll", events(s))
    }
}

func TestFullBufferCountsAsDropped(t *testing.T) {
    hub := NewHub()
    s := &fakeSub{uid: 1, full: true}
    hub.Join(10, s)

    hub.BroadcastComment(10, 5, &repository.MessageDetail{ID: 2, LibraryID: 10, UserID: 1})
    if hub.Dropped() != 1 {
        t.Errorf("Dropped = %d, want 1", hub.Dropped())
    }
}
