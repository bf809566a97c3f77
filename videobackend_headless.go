// videobackend_headless.go - a VideoOutput that records frames in memory
// instead of opening a window; used by tests and by -headless CLI runs.

/*
(c) 2024 - 2026 rvbasic contributors
License: GPLv3 or later
*/

package main

import (
	"sync"
	"time"
)

// HeadlessVideoOutput implements VideoOutput without any windowing
// dependency, keeping the last presented frame for inspection.
type HeadlessVideoOutput struct {
	mu      sync.Mutex
	started bool
	cfg     DisplayConfig
	last    []byte
	frames  uint64
}

func NewHeadlessVideoOutput() *HeadlessVideoOutput {
	return &HeadlessVideoOutput{cfg: DisplayConfig{Width: 640, Height: 512, Format: PixelFormatRGBA8888}}
}

func (h *HeadlessVideoOutput) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = true
	return nil
}

func (h *HeadlessVideoOutput) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	return nil
}

func (h *HeadlessVideoOutput) Close() error { return h.Stop() }

func (h *HeadlessVideoOutput) IsStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

func (h *HeadlessVideoOutput) SetDisplayConfig(cfg DisplayConfig) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cfg = cfg
	return nil
}

func (h *HeadlessVideoOutput) GetDisplayConfig() DisplayConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cfg
}

func (h *HeadlessVideoOutput) UpdateFrame(pixels []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = append(h.last[:0], pixels...)
	h.frames++
	return nil
}

// LastFrame returns a copy of the most recently presented frame, for
// assertions in tests.
func (h *HeadlessVideoOutput) LastFrame() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]byte, len(h.last))
	copy(out, h.last)
	return out
}

func (h *HeadlessVideoOutput) WaitForVSync() { time.Sleep(time.Millisecond) }

func (h *HeadlessVideoOutput) GetFrameCount() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

func (h *HeadlessVideoOutput) GetRefreshRate() float64 { return 60.0 }
