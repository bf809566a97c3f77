// clock.go - the centisecond time-tick producer of §5: "A time-tick
// producer that updates a shared monotonic centisecond counter."
//
// Grounded on video_chip.go's refreshLoop: a background goroutine ticking
// at a fixed rate and publishing through an atomic counter the interpreter
// thread reads without locking.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"sync/atomic"
	"time"
)

// Clock is the single background time-tick producer shared by TIME,
// INKEY(n) timeouts and WAIT n.
type Clock struct {
	centiseconds atomic.Int64
	stop         chan struct{}
}

func NewClock() *Clock {
	c := &Clock{stop: make(chan struct{})}
	go c.run()
	return c
}

func (c *Clock) run() {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.centiseconds.Add(1)
		case <-c.stop:
			return
		}
	}
}

func (c *Clock) Close() { close(c.stop) }

// CentisecondsSinceStart is the TIME pseudo-variable's read.
func (c *Clock) CentisecondsSinceStart() int64 { return c.centiseconds.Load() }

// SetTime implements assignment to TIME, which in real BASIC re-bases the
// counter.
func (c *Clock) SetTime(v int64) { c.centiseconds.Store(v) }

// WaitCentiseconds blocks the calling (interpreter) goroutine for roughly n
// centiseconds, polling in small slices so an escape flag can still be
// observed by the caller between iterations (§5 suspension points: "WAIT n
// (delay)").
func (c *Clock) WaitCentiseconds(n int64, escaped func() bool) {
	target := c.centiseconds.Load() + n
	for c.centiseconds.Load() < target {
		if escaped != nil && escaped() {
			return
		}
		time.Sleep(time.Millisecond)
	}
}
