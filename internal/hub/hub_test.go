package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHubBroadcast(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	waitFor(t, func() bool { return h.ClientCount() == 1 })
	h.Publish("generated", map[string]string{"script": "one_line"})

	reader := bufio.NewReader(resp.Body)
	var sawName bool
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if line == "event: generated\n" {
			sawName = true
		}
		if strings.HasPrefix(line, "data: ") {
			if !sawName {
				t.Error("data line without its event name")
			}
			if !strings.Contains(line, `"script":"one_line"`) {
				t.Errorf("unexpected event %q", line)
			}
			break
		}
	}

	resp.Body.Close()
	waitFor(t, func() bool { return h.ClientCount() == 0 })
}

func TestHubStopsClients(t *testing.T) {
	h := New()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	cancel()
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	// late clients are turned away once the hub stopped
	late, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer late.Body.Close()
	if late.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", late.StatusCode)
	}
}
