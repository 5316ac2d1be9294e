package sshx

import (
	"errors"
	"io"
	"testing"
	"time"

	cryptossh "golang.org/x/crypto/ssh"
)

// fakeChannel is a minimal cryptossh.Channel double: Close is observable,
// Write always succeeds, Read blocks until closed.
type fakeChannel struct {
	closed    chan struct{}
	closeOnce func()
	writes    [][]byte
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{closed: make(chan struct{})}
}

func (f *fakeChannel) Read(p []byte) (int, error) {
	<-f.closed
	return 0, io.EOF
}
func (f *fakeChannel) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	return len(p), nil
}
func (f *fakeChannel) Close() error {
	select {
	case <-f.closed:
	default:
		close(f.closed)
	}
	return nil
}
func (f *fakeChannel) CloseWrite() error { return nil }
func (f *fakeChannel) SendRequest(name string, wantReply bool, payload []byte) (bool, error) {
	return true, nil
}
func (f *fakeChannel) Stderr() io.ReadWriter { return nil }

var _ cryptossh.Channel = (*fakeChannel)(nil)

func newTestPtySession(cols, rows int) (*PtySession, *fakeChannel) {
	ch := newFakeChannel()
	s := &PtySession{
		channel:    ch,
		input:      make(chan []byte, inputQueueCap),
		output:     make(chan []byte, outputQueueCap),
		stopCh:     make(chan struct{}),
		inputDone:  make(chan struct{}),
		outputDone: make(chan struct{}),
		cols:       cols,
		rows:       rows,
	}
	go s.inputPump()
	go s.outputPump()
	return s, ch
}

func TestValidateSize(t *testing.T) {
	cases := []struct {
		cols, rows int
		wantErr    bool
	}{
		{1, 1, false},
		{1000, 1000, false},
		{0, 10, true},
		{10, 0, true},
		{1001, 10, true},
		{10, 1001, true},
	}
	for _, c := range cases {
		err := validateSize(c.cols, c.rows)
		if (err != nil) != c.wantErr {
			t.Errorf("validateSize(%d,%d): err=%v, wantErr=%v", c.cols, c.rows, err, c.wantErr)
		}
	}
}

func TestPtySessionUpdateAndReadSize(t *testing.T) {
	s, _ := newTestPtySession(80, 24)
	defer s.Close()

	if cols, rows := s.Size(); cols != 80 || rows != 24 {
		t.Fatalf("initial size = %d,%d, want 80,24", cols, rows)
	}
	if err := s.UpdateSize(120, 40); err != nil {
		t.Fatalf("UpdateSize: %v", err)
	}
	if cols, rows := s.Size(); cols != 120 || rows != 40 {
		t.Fatalf("size after update = %d,%d, want 120,40", cols, rows)
	}
	if err := s.UpdateSize(0, 40); err == nil {
		t.Fatal("UpdateSize with cols=0 should be rejected")
	}
}

func TestPtySessionWriteRejectsOversizedPayload(t *testing.T) {
	s, _ := newTestPtySession(80, 24)
	defer s.Close()

	big := make([]byte, maxPayloadBytes+1)
	err := s.Write(big)
	if err == nil {
		t.Fatal("expected error for oversized payload")
	}
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != KindPayloadTooLarge {
		t.Fatalf("expected KindPayloadTooLarge, got %v", err)
	}
}

func TestPtySessionWriteAfterCloseFails(t *testing.T) {
	s, _ := newTestPtySession(80, 24)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Write([]byte("hello")); err == nil {
		t.Fatal("expected write after close to fail")
	}
}

func TestPtySessionCloseIsIdempotent(t *testing.T) {
	s, ch := newTestPtySession(80, 24)

	done := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		go func() {
			_ = s.Close()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not return promptly")
		}
	}
	if !s.IsClosed() {
		t.Fatal("session should report closed")
	}
	select {
	case <-ch.closed:
	default:
		t.Fatal("underlying channel was never closed")
	}
}

func TestPtySessionReadAfterCloseReturnsPtyClosed(t *testing.T) {
	s, _ := newTestPtySession(80, 24)
	_ = s.Close()

	_, err := s.Read(10 * time.Millisecond)
	var serr *Error
	if !errors.As(err, &serr) || serr.Kind != KindPtyClosed {
		t.Fatalf("expected KindPtyClosed, got %v", err)
	}
}
