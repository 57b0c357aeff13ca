package status

import (
	"sync"

	"github.com/kozaktomas/smart-attendance/internal/constants"
)

// Event types sent to board listeners.
const (
	EventStatus    = "status"
	EventCountdown = "countdown"
)

// Event is a single update fanned out to listeners.
type Event struct {
	Type      string `json:"type"`
	Status    Status `json:"status"`
	Countdown int    `json:"countdown,omitempty"`
}

// Snapshot is the board state at one point in time.
type Snapshot struct {
	Status    Status `json:"status"`
	Countdown int    `json:"countdown,omitempty"`
}

// Board keeps the current Status and countdown and broadcasts every change.
// It implements Reporter.
type Board struct {
	mu        sync.RWMutex
	current   Status
	countdown int
	listeners []chan Event
}

// NewBoard creates a board showing the Ready status.
func NewBoard() *Board {
	return &Board{current: Ready}
}

// SetStatus replaces the current status and notifies listeners.
func (b *Board) SetStatus(s Status) {
	b.mu.Lock()
	b.current = s
	countdown := b.countdown
	b.mu.Unlock()
	b.send(Event{Type: EventStatus, Status: s, Countdown: countdown})
}

// SetCountdown replaces the countdown value and notifies listeners.
func (b *Board) SetCountdown(n int) {
	b.mu.Lock()
	b.countdown = n
	current := b.current
	b.mu.Unlock()
	b.send(Event{Type: EventCountdown, Status: current, Countdown: n})
}

// Snapshot returns the current status and countdown.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{Status: b.current, Countdown: b.countdown}
}

// AddListener adds an event listener.
func (b *Board) AddListener() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, constants.EventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener and closes its channel.
func (b *Board) RemoveListener(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// ListenerCount returns the number of attached listeners.
func (b *Board) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

func (b *Board) send(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}
