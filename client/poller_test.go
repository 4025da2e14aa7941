package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statusServer serves a mutable task → status map.
type statusServer struct {
	mu       sync.Mutex
	statuses map[string]string
	polls    int
}

func (s *statusServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	_ = json.NewEncoder(w).Encode(s.statuses)
}

func (s *statusServer) set(task, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[task] = status
}

func (s *statusServer) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

func TestPollerReportsAndLatchesVerified(t *testing.T) {
	backend := &statusServer{statuses: map[string]string{"twitter": "pending"}}
	srv := httptest.NewServer(http.HandlerFunc(backend.handler))
	defer srv.Close()

	var mu sync.Mutex
	var verifiedTasks []string
	var lastStatuses map[string]string

	p := NewStatusPoller(New(srv.URL), "0xABC", 10*time.Millisecond)
	p.OnStatus = func(statuses map[string]string) {
		mu.Lock()
		lastStatuses = statuses
		mu.Unlock()
	}
	p.OnVerified = func(task string) {
		mu.Lock()
		verifiedTasks = append(verifiedTasks, task)
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return lastStatuses["twitter"] == "pending"
	}, time.Second, 5*time.Millisecond)

	backend.set("twitter", "verified")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(verifiedTasks) == 1
	}, time.Second, 5*time.Millisecond)

	// let several more polls pass: the latch keeps OnVerified at one firing
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{"twitter"}, verifiedTasks)
	mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after context cancel")
	}
}

func TestPollerKickTriggersImmediatePoll(t *testing.T) {
	backend := &statusServer{statuses: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(backend.handler))
	defer srv.Close()

	// interval far beyond the test duration, so only Kick can cause a poll
	p := NewStatusPoller(New(srv.URL), "0xABC", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	assert.Equal(t, 0, backend.pollCount())
	p.Kick()

	require.Eventually(t, func() bool {
		return backend.pollCount() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestPollerSkipsTransientErrors(t *testing.T) {
	var mu sync.Mutex
	fail := true
	var got map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		failing := fail
		mu.Unlock()
		if failing {
			http.Error(w, "store unavailable", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"twitter": "pending"})
	}))
	defer srv.Close()

	p := NewStatusPoller(New(srv.URL), "0xABC", 10*time.Millisecond)
	p.OnStatus = func(statuses map[string]string) {
		mu.Lock()
		got = statuses
		mu.Unlock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	// errors are logged and skipped; the next tick recovers on its own
	time.Sleep(30 * time.Millisecond)
	mu.Lock()
	fail = false
	mu.Unlock()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got["twitter"] == "pending"
	}, time.Second, 5*time.Millisecond)
}
