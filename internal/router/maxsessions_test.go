package router

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
)

func TestMaxSessionsRejectsOverflow(t *testing.T) {
	mw := maxSessions(1, log.New(io.Discard))

	release := make(chan struct{})
	entered := make(chan struct{})
	h := mw(func(ssh.Session) {
		close(entered)
		<-release
	})

	first := newFakeSession(context.Background(), "203.0.113.10", &housekeeper)
	done := make(chan struct{})
	go func() {
		h(first)
		close(done)
	}()
	<-entered

	second := newFakeSession(context.Background(), "203.0.113.11", &housekeeper)
	called := false
	mw(func(ssh.Session) { called = true })(second)
	if called {
		t.Fatal("second session should be rejected")
	}
	if w := second.written(); len(w) != 1 || w[0] != msgTooMany {
		t.Fatalf("writes = %#v", w)
	}

	close(release)
	<-done

	third := newFakeSession(context.Background(), "203.0.113.12", &housekeeper)
	mw(func(ssh.Session) { called = true })(third)
	if !called {
		t.Fatal("slot should be free after the first handler returned")
	}
}

func TestMaxSessionsReleasesOnContextDone(t *testing.T) {
	mw := maxSessions(1, log.New(io.Discard))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	release := make(chan struct{})
	entered := make(chan struct{})
	h := mw(func(ssh.Session) {
		close(entered)
		<-release
	})

	done := make(chan struct{})
	go func() {
		h(newFakeSession(ctx, "203.0.113.20", &housekeeper))
		close(done)
	}()
	<-entered
	cancel()

	admitted := false
	deadline := time.Now().Add(2 * time.Second)
	for !admitted && time.Now().Before(deadline) {
		mw(func(ssh.Session) { admitted = true })(newFakeSession(context.Background(), "203.0.113.21", &housekeeper))
		if !admitted {
			time.Sleep(5 * time.Millisecond)
		}
	}
	if !admitted {
		t.Fatal("slot should be released after context cancellation")
	}

	close(release)
	<-done
}

func TestMaxSessionsRecoversFromPanic(t *testing.T) {
	mw := maxSessions(1, log.New(io.Discard))

	mw(func(ssh.Session) { panic("boom") })(newFakeSession(context.Background(), "203.0.113.30", &housekeeper))

	called := false
	mw(func(ssh.Session) { called = true })(newFakeSession(context.Background(), "203.0.113.31", &housekeeper))
	if !called {
		t.Fatal("slot should be released after panic")
	}
}
