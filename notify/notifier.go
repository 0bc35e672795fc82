// Package notify delivers fire-and-forget status messages that expire
// on their own. All timer management lives here: one sweep timer
// serves every active notification, so call sites never schedule their
// own timeouts.
package notify

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind classifies a notification for display.
type Kind int

const (
	Success Kind = iota
	Error
	Info
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Error:
		return "error"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Default display windows. Copy acknowledgments expire faster than
// regular toasts.
const (
	DefaultDuration = 3000 * time.Millisecond
	CopyAckDuration = 2000 * time.Millisecond
)

// Notification is one visible message. Notifications are independent:
// dismissal of one never affects the others.
type Notification struct {
	ID        uint64
	Kind      Kind
	Message   string
	ExpiresAt time.Time
}

// Notifier owns the set of active notifications and their expiry.
// There is no retained history; an expired notification is gone.
type Notifier struct {
	mu     sync.Mutex
	seq    uint64
	active map[uint64]Notification
	timer  *time.Timer
	onShow func(Notification)
	closed bool
}

// New creates a notifier. onShow, when non-nil, is invoked once per
// published notification (the shell uses it to render).
func New(onShow func(Notification)) *Notifier {
	return &Notifier{
		active: make(map[uint64]Notification),
		onShow: onShow,
	}
}

// Publish adds a notification that auto-dismisses after d. A
// non-positive d falls back to DefaultDuration. Returns the
// notification's ID.
func (n *Notifier) Publish(kind Kind, message string, d time.Duration) uint64 {
	if d <= 0 {
		d = DefaultDuration
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return 0
	}
	n.seq++
	note := Notification{
		ID:        n.seq,
		Kind:      kind,
		Message:   message,
		ExpiresAt: time.Now().Add(d),
	}
	n.active[note.ID] = note
	n.reschedule()
	n.mu.Unlock()

	log.Debug().Str("kind", kind.String()).Str("message", message).Msg("Notification published")
	if n.onShow != nil {
		n.onShow(note)
	}
	return note.ID
}

// Active returns the currently visible notifications in publish order.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, 0, len(n.active))
	for _, note := range n.active {
		out = append(out, note)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close stops the sweep timer and drops all active notifications.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	n.active = make(map[uint64]Notification)
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}

// reschedule arms the sweep timer for the earliest pending expiry.
// Callers must hold n.mu.
func (n *Notifier) reschedule() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	if len(n.active) == 0 {
		return
	}

	var earliest time.Time
	for _, note := range n.active {
		if earliest.IsZero() || note.ExpiresAt.Before(earliest) {
			earliest = note.ExpiresAt
		}
	}
	n.timer = time.AfterFunc(time.Until(earliest), n.sweep)
}

// sweep drops every expired notification and re-arms for the next one.
func (n *Notifier) sweep() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}

	now := time.Now()
	for id, note := range n.active {
		if !note.ExpiresAt.After(now) {
			delete(n.active, id)
		}
	}
	n.reschedule()
}
