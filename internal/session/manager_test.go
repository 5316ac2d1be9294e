package session

import (
	"errors"
	"testing"
	"time"

	"github.com/websoft9/sshbridge/internal/sshx"
)

func TestMsToDuration(t *testing.T) {
	if got := msToDuration(0); got != time.Millisecond {
		t.Errorf("msToDuration(0) = %v, want 1ms", got)
	}
	if got := msToDuration(-5); got != time.Millisecond {
		t.Errorf("msToDuration(-5) = %v, want 1ms", got)
	}
	if got := msToDuration(50); got != 50*time.Millisecond {
		t.Errorf("msToDuration(50) = %v, want 50ms", got)
	}
}

func TestGetSessionOnEmptyManagerReturnsNil(t *testing.T) {
	m := NewManager()
	if c := m.GetSession("nope"); c != nil {
		t.Fatalf("expected nil client, got %v", c)
	}
}

func TestListSessionsEmpty(t *testing.T) {
	m := NewManager()
	if ids := m.ListSessions(); len(ids) != 0 {
		t.Fatalf("expected no sessions, got %v", ids)
	}
}

func TestCloseSessionOnUnknownIDIsNoop(t *testing.T) {
	m := NewManager()
	if err := m.CloseSession("unknown"); err != nil {
		t.Fatalf("CloseSession on unknown id should be a no-op, got %v", err)
	}
}

func TestClosePtySessionOnUnknownIDReturnsNotFound(t *testing.T) {
	m := NewManager()
	err := m.ClosePtySession("unknown")
	var serr *sshx.Error
	if !errors.As(err, &serr) || serr.Kind != sshx.KindPtyNotFound {
		t.Fatalf("expected KindPtyNotFound, got %v", err)
	}
}

func TestStartPtySessionWithoutSSHSessionReturnsSessionNotFound(t *testing.T) {
	m := NewManager()
	_, err := m.StartPtySession("unknown", 80, 24)
	var serr *sshx.Error
	if !errors.As(err, &serr) || serr.Kind != sshx.KindSessionNotFound {
		t.Fatalf("expected KindSessionNotFound, got %v", err)
	}
}

func TestWriteToPtyWithoutSSHSessionReturnsSessionNotFound(t *testing.T) {
	m := NewManager()
	err := m.WriteToPty("unknown", []byte("x"))
	var serr *sshx.Error
	if !errors.As(err, &serr) || serr.Kind != sshx.KindSessionNotFound {
		t.Fatalf("expected KindSessionNotFound, got %v", err)
	}
}

func TestReadFromPtyWithoutSSHSessionReturnsSessionNotFound(t *testing.T) {
	m := NewManager()
	_, err := m.ReadFromPty("unknown", 1)
	var serr *sshx.Error
	if !errors.As(err, &serr) || serr.Kind != sshx.KindSessionNotFound {
		t.Fatalf("expected KindSessionNotFound, got %v", err)
	}
}

func TestCancelPendingConnectionReportsExistence(t *testing.T) {
	m := NewManager()
	if ok := m.CancelPendingConnection("missing"); ok {
		t.Fatal("expected false for a connection with no pending handle")
	}

	called := false
	m.setPending("id", func() { called = true })
	if ok := m.CancelPendingConnection("id"); !ok {
		t.Fatal("expected true: pending handle existed")
	}
	if !called {
		t.Fatal("expected the cancel func to be invoked")
	}
	if ok := m.CancelPendingConnection("id"); ok {
		t.Fatal("expected false: handle already consumed")
	}
}
