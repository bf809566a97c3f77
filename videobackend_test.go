package main

import "testing"

func TestHeadlessVideoOutputStartStop(t *testing.T) {
	v := NewHeadlessVideoOutput()
	if v.IsStarted() {
		t.Fatalf("a fresh HeadlessVideoOutput should not be started")
	}
	if err := v.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !v.IsStarted() {
		t.Fatalf("IsStarted should be true after Start")
	}
	if err := v.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if v.IsStarted() {
		t.Fatalf("IsStarted should be false after Stop")
	}
}

func TestHeadlessVideoOutputUpdateFrameCountsAndStores(t *testing.T) {
	v := NewHeadlessVideoOutput()
	if err := v.UpdateFrame([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("UpdateFrame: %v", err)
	}
	if v.GetFrameCount() != 1 {
		t.Fatalf("GetFrameCount() = %d, want 1", v.GetFrameCount())
	}
	if got := v.LastFrame(); len(got) != 4 || got[0] != 1 {
		t.Fatalf("LastFrame() = %v, want [1 2 3 4]", got)
	}
}

func TestHeadlessVideoOutputDisplayConfigRoundTrips(t *testing.T) {
	v := NewHeadlessVideoOutput()
	cfg := DisplayConfig{Width: 320, Height: 256, Format: PixelFormatRGBA8888, Title: "test"}
	if err := v.SetDisplayConfig(cfg); err != nil {
		t.Fatalf("SetDisplayConfig: %v", err)
	}
	got := v.GetDisplayConfig()
	if got.Width != 320 || got.Height != 256 || got.Title != "test" {
		t.Fatalf("GetDisplayConfig() = %+v, want the config just set", got)
	}
}

func TestHeadlessVideoOutputLastFrameIsACopy(t *testing.T) {
	v := NewHeadlessVideoOutput()
	v.UpdateFrame([]byte{9, 9})
	got := v.LastFrame()
	got[0] = 0
	if again := v.LastFrame(); again[0] != 9 {
		t.Fatalf("LastFrame should return a defensive copy, mutating it should not affect internal state")
	}
}
