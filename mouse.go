// mouse.go - the mouse collaborator of §6.2 and §5's multi-producer
// single-consumer event queue.
//
// Grounded on terminal_io.go's ring-buffer input pattern; the dual
// drop/expiry policy implements the Open Question decision recorded in
// DESIGN.md (both behaviours are reachable, not alternatives).

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import "sync"

const mouseQueueDepth = 7

// MouseEvent is one sample: {x, y, buttons, timestamp_cs} per §6.2.
type MouseEvent struct {
	X, Y      int
	Buttons   int
	Timestamp int64
}

// Mouse is the §6.2 collaborator: multi-producer (host backend), single
// consumer (interpreter thread).
type Mouse struct {
	mu     sync.Mutex
	clock  *Clock
	queue  []MouseEvent
	expiry int64 // 0 = capacity-7 ring, >0 = oldest-first drop by age

	advalButtons int // last-known button mask, for ADVAL(-n) style reads
}

func NewMouse(clock *Clock) *Mouse { return &Mouse{clock: clock} }

// Push is called by the host backend on every mouse sample.
func (m *Mouse) Push(x, y, buttons int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := MouseEvent{X: x, Y: y, Buttons: buttons, Timestamp: m.clock.CentisecondsSinceStart()}
	m.advalButtons = buttons
	if m.expiry == 0 {
		// capacity-7 ring: drop oldest on overflow
		m.queue = append(m.queue, ev)
		if len(m.queue) > mouseQueueDepth {
			m.queue = m.queue[len(m.queue)-mouseQueueDepth:]
		}
		return
	}
	m.queue = append(m.queue, ev)
}

// QueueExpiry sets the expiry window in centiseconds (0 reverts to the
// capacity-7 ring policy).
func (m *Mouse) QueueExpiry(cs int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiry = cs
}

// DrainExpired removes and returns every queued event older than the
// configured expiry window (no-op under the ring policy).
func (m *Mouse) DrainExpired() []MouseEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expiry == 0 {
		return nil
	}
	now := m.clock.CentisecondsSinceStart()
	var expired, kept []MouseEvent
	for _, ev := range m.queue {
		if now-ev.Timestamp >= m.expiry {
			expired = append(expired, ev)
		} else {
			kept = append(kept, ev)
		}
	}
	m.queue = kept
	return expired
}

// Read implements the MOUSE statement's read: most recent sample, or the
// zero value if none has arrived yet.
func (m *Mouse) Read() MouseEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.queue) == 0 {
		return MouseEvent{}
	}
	ev := m.queue[len(m.queue)-1]
	m.queue = nil
	return ev
}

// Adval answers ADVAL(n) for the mouse-related channels (negative n
// selects button/axis channels in the real system; here a small subset
// sufficient for BASIC programs that poll MOUSE buttons via ADVAL).
func (m *Mouse) Adval(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch n {
	case -5:
		return m.advalButtons
	}
	return 0
}
