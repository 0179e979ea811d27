package mqtt311

import (
	"sync"
	"time"
)

// DeliveryStatus describes the outcome of a tracked QoS 1 operation,
// reported through the StatusHandler.
type DeliveryStatus int

const (
	// StatusTimeout means no acknowledgment arrived within the
	// message timeout.
	StatusTimeout DeliveryStatus = 0

	// StatusDelivered means the acknowledgment arrived in time.
	StatusDelivered DeliveryStatus = 1

	// StatusUnknown means an acknowledgment arrived for a packet
	// identifier that is no longer tracked, usually because it
	// already timed out.
	StatusUnknown DeliveryStatus = 2
)

// MessageHandler is invoked for each inbound PUBLISH.
type MessageHandler func(msg *Message)

// StatusHandler is invoked when a tracked packet identifier resolves.
type StatusHandler func(packetID uint16, status DeliveryStatus)

// packetIDSequence hands out packet identifiers, cycling through
// 1..65535. Zero is never produced; the wire format reserves it.
type packetIDSequence struct {
	mu   sync.Mutex
	next uint16
}

// Next returns the next packet identifier.
func (s *packetIDSequence) Next() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	if s.next == 0 {
		s.next = 1
	}
	return s.next
}

// AckTracker tracks packet identifiers awaiting acknowledgment, each
// with a delivery deadline. A notify callback reports terminal
// outcomes.
type AckTracker struct {
	mu      sync.Mutex
	pending map[uint16]time.Time
	timeout time.Duration
	notify  StatusHandler
}

// NewAckTracker creates a tracker with the given per-message timeout.
func NewAckTracker(timeout time.Duration, notify StatusHandler) *AckTracker {
	return &AckTracker{
		pending: make(map[uint16]time.Time),
		timeout: timeout,
		notify:  notify,
	}
}

// SetNotify replaces the status callback.
func (t *AckTracker) SetNotify(notify StatusHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notify = notify
}

// Register starts tracking a packet identifier. Registering an
// identifier that is already pending resets its deadline.
func (t *AckTracker) Register(packetID uint16, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[packetID] = now.Add(t.timeout)
}

// Resolve marks a packet identifier as acknowledged. It reports
// whether the identifier was being tracked, firing StatusDelivered
// when it was.
func (t *AckTracker) Resolve(packetID uint16) bool {
	t.mu.Lock()
	_, ok := t.pending[packetID]
	if ok {
		delete(t.pending, packetID)
	}
	notify := t.notify
	t.mu.Unlock()

	if ok && notify != nil {
		notify(packetID, StatusDelivered)
	}
	return ok
}

// Sweep expires every pending identifier whose deadline has passed,
// firing StatusTimeout for each.
func (t *AckTracker) Sweep(now time.Time) {
	t.mu.Lock()
	var expired []uint16
	for packetID, deadline := range t.pending {
		if now.After(deadline) {
			expired = append(expired, packetID)
			delete(t.pending, packetID)
		}
	}
	notify := t.notify
	t.mu.Unlock()

	if notify == nil {
		return
	}
	for _, packetID := range expired {
		notify(packetID, StatusTimeout)
	}
}

// Drop stops tracking a packet identifier without notification. It
// reports whether the identifier was being tracked.
func (t *AckTracker) Drop(packetID uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[packetID]
	delete(t.pending, packetID)
	return ok
}

// Clear drops all pending identifiers without notification. Used when
// a clean session discards prior state.
func (t *AckTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = make(map[uint16]time.Time)
}

// Count returns the number of identifiers awaiting acknowledgment.
func (t *AckTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
