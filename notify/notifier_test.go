package notify

import (
	"sync"
	"testing"
	"time"
)

func TestPublishAndExpire(t *testing.T) {
	n := New(nil)
	defer n.Close()

	n.Publish(Success, "done", 30*time.Millisecond)

	if got := len(n.Active()); got != 1 {
		t.Fatalf("Active() = %d notifications, want 1", got)
	}

	time.Sleep(60 * time.Millisecond)
	if got := len(n.Active()); got != 0 {
		t.Errorf("Active() = %d after expiry, want 0", got)
	}
}

func TestExpiryIsIndependentPerNotification(t *testing.T) {
	n := New(nil)
	defer n.Close()

	short := n.Publish(Error, "short-lived", 25*time.Millisecond)
	long := n.Publish(Info, "long-lived", 200*time.Millisecond)

	time.Sleep(60 * time.Millisecond)

	active := n.Active()
	if len(active) != 1 {
		t.Fatalf("Active() = %d, want only the long-lived one", len(active))
	}
	if active[0].ID != long {
		t.Errorf("Surviving notification ID = %d, want %d (short %d should be gone)", active[0].ID, long, short)
	}
}

func TestMultipleVisibleConcurrently(t *testing.T) {
	n := New(nil)
	defer n.Close()

	n.Publish(Success, "one", 200*time.Millisecond)
	n.Publish(Error, "two", 200*time.Millisecond)
	n.Publish(Info, "three", 200*time.Millisecond)

	active := n.Active()
	if len(active) != 3 {
		t.Fatalf("Active() = %d, want 3", len(active))
	}
	// Publish order preserved.
	for i, want := range []string{"one", "two", "three"} {
		if active[i].Message != want {
			t.Errorf("Active()[%d] = %q, want %q", i, active[i].Message, want)
		}
	}
}

func TestOnShowCallback(t *testing.T) {
	var mu sync.Mutex
	var shown []string
	n := New(func(note Notification) {
		mu.Lock()
		shown = append(shown, note.Message)
		mu.Unlock()
	})
	defer n.Close()

	n.Publish(Success, "hello", DefaultDuration)
	n.Publish(Error, "oops", DefaultDuration)

	mu.Lock()
	defer mu.Unlock()
	if len(shown) != 2 || shown[0] != "hello" || shown[1] != "oops" {
		t.Errorf("onShow received %v", shown)
	}
}

func TestDefaultDurationFallback(t *testing.T) {
	n := New(nil)
	defer n.Close()

	id := n.Publish(Info, "default window", 0)
	for _, note := range n.Active() {
		if note.ID != id {
			continue
		}
		remaining := time.Until(note.ExpiresAt)
		if remaining < 2*time.Second || remaining > DefaultDuration {
			t.Errorf("Default expiry window = %v, want about %v", remaining, DefaultDuration)
		}
		return
	}
	t.Fatal("Published notification not active")
}

func TestPublishAfterClose(t *testing.T) {
	n := New(nil)
	n.Close()

	if id := n.Publish(Success, "late", DefaultDuration); id != 0 {
		t.Errorf("Publish() after Close = %d, want 0", id)
	}
	if got := len(n.Active()); got != 0 {
		t.Errorf("Active() after Close = %d, want 0", got)
	}
}
