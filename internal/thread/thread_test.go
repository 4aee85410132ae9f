package thread

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/thoughts-chat/internal/docstore"
	"github.com/tbourn/thoughts-chat/internal/domain"
	"github.com/tbourn/thoughts-chat/internal/notify"
	"github.com/tbourn/thoughts-chat/internal/scheduler"
	"github.com/tbourn/thoughts-chat/internal/services"
)

var t0 = time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return t0 }

func TestAddPending_IsSendingPlaceholder(t *testing.T) {
	th := New(fixedNow)
	a := th.AddPending("hi")
	b := th.AddPending("there")
	if a == b || a == "" {
		t.Fatalf("pending ids must be unique and non-empty: %q %q", a, b)
	}

	es := th.Entries()
	if len(es) != 2 {
		t.Fatalf("len = %d", len(es))
	}
	p, ok := es[0].(Pending)
	if !ok {
		t.Fatalf("entry 0 is %T", es[0])
	}
	if p.Status != domain.StatusSending || p.Text != "hi" || p.Timestamp != "2025-07-01T10:00:00.000Z" {
		t.Fatalf("unexpected placeholder: %+v", p)
	}
}

func TestConfirm_ReplacesInPlace(t *testing.T) {
	th := New(fixedNow)
	a := th.AddPending("first")
	th.AddPending("second")

	m := domain.Message{ID: 10, Text: "first", Status: domain.StatusSent, UserID: 1}
	if !th.Confirm(a, m, &domain.User{ID: 1, Name: "You"}) {
		t.Fatal("Confirm returned false")
	}
	es := th.Entries()
	got, ok := es[0].(Persisted)
	if !ok || got.ID != 10 || got.Status != domain.StatusSent {
		t.Fatalf("entry 0 = %#v", es[0])
	}
	if got.SenderName == nil || *got.SenderName != "You" {
		t.Fatalf("sender not set: %+v", got)
	}
	if _, ok := es[1].(Pending); !ok {
		t.Fatalf("entry 1 should still be pending: %#v", es[1])
	}
	if th.Confirm(a, m, nil) {
		t.Fatal("confirming twice must report false")
	}
}

func TestConfirm_DropsPlaceholderWhenAlreadyLoaded(t *testing.T) {
	th := New(fixedNow)
	a := th.AddPending("x")
	th.Load([]domain.MessageView{{Message: domain.Message{ID: 3, Status: domain.StatusDelivered}}})

	if !th.Confirm(a, domain.Message{ID: 3, Status: domain.StatusSent}, nil) {
		t.Fatal("Confirm returned false")
	}
	es := th.Entries()
	if len(es) != 1 {
		t.Fatalf("expected a single entry, got %d", len(es))
	}
	if p := es[0].(Persisted); p.Status != domain.StatusDelivered {
		t.Fatalf("loaded status overwritten: %q", p.Status)
	}
}

func TestDiscard(t *testing.T) {
	th := New(fixedNow)
	a := th.AddPending("x")
	if !th.Discard(a) || th.Len() != 0 {
		t.Fatalf("Discard failed, len=%d", th.Len())
	}
	if th.Discard(a) {
		t.Fatal("second Discard must report false")
	}
}

func TestApply_ForwardOnly(t *testing.T) {
	th := New(fixedNow)
	th.Load([]domain.MessageView{{Message: domain.Message{ID: 1, Status: domain.StatusSent}}})

	if !th.Apply(notify.Event{MessageID: 1, Status: domain.StatusRead}) {
		t.Fatal("forward step rejected")
	}
	if th.Apply(notify.Event{MessageID: 1, Status: domain.StatusDelivered}) {
		t.Fatal("regression accepted")
	}
	if th.Apply(notify.Event{MessageID: 2, Status: domain.StatusRead}) {
		t.Fatal("unknown id accepted")
	}
	if p := th.Entries()[0].(Persisted); p.Status != domain.StatusRead {
		t.Fatalf("status = %q", p.Status)
	}
}

func TestRemoveAndLoadKeepsPending(t *testing.T) {
	th := New(fixedNow)
	th.Load([]domain.MessageView{
		{Message: domain.Message{ID: 1}},
		{Message: domain.Message{ID: 2}},
	})
	pid := th.AddPending("typing")

	if !th.Remove(1) || th.Remove(1) {
		t.Fatal("Remove semantics wrong")
	}

	th.Load([]domain.MessageView{{Message: domain.Message{ID: 5}}})
	es := th.Entries()
	if len(es) != 2 {
		t.Fatalf("len = %d", len(es))
	}
	if p, ok := es[0].(Persisted); !ok || p.ID != 5 {
		t.Fatalf("entry 0 = %#v", es[0])
	}
	if p, ok := es[1].(Pending); !ok || p.ID != pid {
		t.Fatalf("entry 1 = %#v", es[1])
	}
}

func TestAttach_FollowsClientPipeline(t *testing.T) {
	st, err := docstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	clk := scheduler.NewManualClock(t0)
	nop := zerolog.Nop()
	c := services.NewClient(st, services.ClientOptions{Clock: clk, Logger: &nop})
	defer c.Close()
	ctx := context.Background()

	uid, err := c.CreateUser(ctx, "You", "", "", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u, _ := c.GetUser(ctx, uid)

	th := New(clk.Now)
	detach := th.Attach(c)

	pid := th.AddPending("hi")
	m, err := c.SendMessage(ctx, "hi", uid)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	th.Confirm(pid, *m, u)

	status := func() domain.Status { return th.Entries()[0].(Persisted).Status }
	if status() != domain.StatusSent {
		t.Fatalf("status = %q", status())
	}
	clk.Advance(time.Second)
	if status() != domain.StatusDelivered {
		t.Fatalf("after 1s status = %q", status())
	}

	detach()
	clk.Advance(2 * time.Second)
	if status() != domain.StatusDelivered {
		t.Fatalf("detached thread still updated: %q", status())
	}

	all, _ := c.GetAllMessages(ctx)
	th.Load(all)
	if status() != domain.StatusRead {
		t.Fatalf("reload status = %q", status())
	}
}
