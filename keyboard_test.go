package main

import "testing"

func newTestKeyboard(t *testing.T) *Keyboard {
	t.Helper()
	clock := NewClock()
	t.Cleanup(clock.Close)
	return NewKeyboard(clock)
}

func TestKeyboardFeedThenGetBlocking(t *testing.T) {
	k := newTestKeyboard(t)
	k.Feed('A')
	b, err := k.GetBlocking()
	if err != nil {
		t.Fatalf("GetBlocking: %v", err)
	}
	if b != 'A' {
		t.Fatalf("GetBlocking() = %q, want 'A'", b)
	}
}

func TestKeyboardGetBlockingReturnsEscapeError(t *testing.T) {
	k := newTestKeyboard(t)
	k.TriggerEscape()
	_, err := k.GetBlocking()
	be, ok := err.(*BasicError)
	if !ok || be.Kind != ErrEscape {
		t.Fatalf("GetBlocking with escape pending should return ErrEscape, got %v", err)
	}
}

func TestKeyboardEscapeDisabledSuppressesRequest(t *testing.T) {
	k := newTestKeyboard(t)
	k.TriggerEscape()
	k.SetEscapeDisabled(true)
	if k.EscapeRequested() {
		t.Fatalf("EscapeRequested should be false while escape is disabled")
	}
	k.SetEscapeDisabled(false)
	if !k.EscapeRequested() {
		t.Fatalf("EscapeRequested should be true again once re-enabled")
	}
}

func TestKeyboardClearEscape(t *testing.T) {
	k := newTestKeyboard(t)
	k.TriggerEscape()
	k.ClearEscape()
	if k.EscapeRequested() {
		t.Fatalf("ClearEscape should reset the escape flag")
	}
}

func TestKeyboardPollTimesOutWithNoInput(t *testing.T) {
	k := newTestKeyboard(t)
	if _, ok := k.Poll(0); ok {
		t.Fatalf("Poll with no fed input and zero timeout should report none available")
	}
}

func TestKeyboardPollReturnsFedByte(t *testing.T) {
	k := newTestKeyboard(t)
	k.Feed('Z')
	b, ok := k.Poll(5)
	if !ok || b != 'Z' {
		t.Fatalf("Poll should return the fed byte, got %q,%v", b, ok)
	}
}

func TestKeyboardInkeyNegativeNeverLatched(t *testing.T) {
	k := newTestKeyboard(t)
	v, err := k.Inkey(-1)
	if err != nil {
		t.Fatalf("Inkey(-1): %v", err)
	}
	if v.AsInt64() != 0 {
		t.Fatalf("Inkey with a negative n and no physical keyboard should report not-pressed (0), got %v", v)
	}
}

func TestKeyboardInkeyNonNegativeReturnsCode(t *testing.T) {
	k := newTestKeyboard(t)
	k.Feed('Q')
	v, err := k.Inkey(5)
	if err != nil {
		t.Fatalf("Inkey(5): %v", err)
	}
	if v.AsInt64() != int64('Q') {
		t.Fatalf("Inkey(5) = %v, want code for 'Q'", v)
	}
}

func TestKeyboardSetFnKeyStringBounds(t *testing.T) {
	k := newTestKeyboard(t)
	k.SetFnKeyString(0, []byte("HELLO"))
	if string(k.fnKeys[0]) != "HELLO" {
		t.Fatalf("SetFnKeyString should store the expansion string")
	}
	k.SetFnKeyString(99, []byte("ignored")) // out of range, must not panic
}

func TestKeyboardPushKeyFeedsRing(t *testing.T) {
	k := newTestKeyboard(t)
	k.PushKey('P')
	b, ok := k.Poll(5)
	if !ok || b != 'P' {
		t.Fatalf("PushKey should feed the ring buffer, got %q,%v", b, ok)
	}
}
